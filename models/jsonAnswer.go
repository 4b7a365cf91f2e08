package models
/*
JSON CRUD-answers.
 */

// Error codes set in JSONAnswer.ErrorCode so transports can map failures without parsing messages.
const (
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodePersistence     = "PERSISTENCE"
	ErrCodeRender          = "RENDER"
	ErrCodeInternal        = "INTERNAL"
)

// JSONAnswer is a basic JSON-CRUD-answer able to provide errors and tell if the query was successful.
// Errors holds per-field messages for input validation failures.
type JSONAnswer struct {
	Success      bool
	Error        bool
	ErrorCode    string            `json:",omitempty"`
	ErrorMessage string
	Errors       map[string]string `json:",omitempty"`
}

// JSONSelectAnswer is the default answer to a select/read query, including a result.
type JSONSelectAnswer struct {
	JSONAnswer
	Result interface{}
}

// JSONInsertAnswer is the default answer to a insert/create-query, including the key of the created item.
type JSONInsertAnswer struct {
	JSONAnswer
	LastKey string
	Result  interface{} `json:",omitempty"`
}

// JSONDeleteAnswer is the default answer to a delete-query, including the count of deleted rows and the id that was deleted.
type JSONDeleteAnswer struct {
	JSONAnswer
	RowCount int64
	Id       string
}

// JSONUpdateAnswer is the default answer to an update-query, including the count of updated rows and the id that was updated.
type JSONUpdateAnswer struct {
	JSONAnswer
	RowCount int64
	Id       string
	Result   interface{} `json:",omitempty"`
}

// GetBadJSONInsertAnswer returns a bad JSONInsertAnswer in case of a failed insert/create-query.
func GetBadJSONInsertAnswer(code string, message string) (ans JSONInsertAnswer) {
	return JSONInsertAnswer{
		JSONAnswer: GetBadJSONAnswer(code, message),
	}
}

// GetGoodJSONInsertAnswer returns a good JSONInsertAnswer in case of a succesful insert/create-query.
func GetGoodJSONInsertAnswer(lastKey string, result interface{}) (ans JSONInsertAnswer) {
	return JSONInsertAnswer{
		JSONAnswer: GetGoodJSONAnswer(),
		LastKey:    lastKey,
		Result:     result,
	}
}

// GetBadJSONSelectAnswer returns a bad JSONSelectAnswer in case of a failed select/read-query.
func GetBadJSONSelectAnswer(code string, message string) (ans JSONSelectAnswer) {
	return JSONSelectAnswer{
		JSONAnswer: GetBadJSONAnswer(code, message),
	}
}

// GetGoodJSONSelectAnswer returns a good JSONSelectAnswer in case of a succesful select/read-query.
func GetGoodJSONSelectAnswer(result interface{}) (ans JSONSelectAnswer) {
	return JSONSelectAnswer{
		JSONAnswer: GetGoodJSONAnswer(),
		Result:     result,
	}
}

// GetBadJSONDeleteAnswer returns a bad JSONDeleteAnswer in case of a failed delete-query.
func GetBadJSONDeleteAnswer(code string, message string, id string) (ans JSONDeleteAnswer) {
	return JSONDeleteAnswer{
		JSONAnswer: GetBadJSONAnswer(code, message),
		RowCount:   -1,
		Id:         id,
	}
}

// GetGoodJSONDeleteAnswer returns a good JSONDeleteAnswer in case of a successful delete-query.
func GetGoodJSONDeleteAnswer(rowCount int64, id string) (ans JSONDeleteAnswer) {
	return JSONDeleteAnswer{
		JSONAnswer: GetGoodJSONAnswer(),
		RowCount:   rowCount,
		Id:         id,
	}
}

// GetBadJSONUpdateAnswer returns a bad JSONUpdateAnswer in case of a failed update-query.
func GetBadJSONUpdateAnswer(code string, message string, id string) (ans JSONUpdateAnswer) {
	return JSONUpdateAnswer{
		JSONAnswer: GetBadJSONAnswer(code, message),
		RowCount:   -1,
		Id:         id,
	}
}

// GetGoodJSONUpdateAnswer returns a good JSONUpdateAnswer in case of a successful update-query.
func GetGoodJSONUpdateAnswer(rowCount int64, id string, result interface{}) (ans JSONUpdateAnswer) {
	return JSONUpdateAnswer{
		JSONAnswer: GetGoodJSONAnswer(),
		RowCount:   rowCount,
		Id:         id,
		Result:     result,
	}
}

// GetBadJSONAnswer returns a bad JSONAnswer in case of an error/failed query.
func GetBadJSONAnswer(code string, message string) (ans JSONAnswer) {
	return JSONAnswer{
		Error:        true,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

// GetGoodJSONAnswer returns a good JSONAnswer in case of a successful query.
func GetGoodJSONAnswer() (ans JSONAnswer) {
	return JSONAnswer{
		Success: true,
	}
}
