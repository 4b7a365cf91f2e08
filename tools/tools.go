// Package tools provides several helper-functions used across tankerlog.
package tools

import (
	"database/sql"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Compufreak345/dbg"
	"github.com/mattn/go-sqlite3"
)

const tTag = dbg.Tag("tankerlog/tools.go")

// GetCleanFilePath Checks if a file is in the given dir or a subdir of the given dir. Should prevent injection like "../../etc/profile"
// returns a definitely in the directory filePath and an error if it was not succesful
// modified version of http://golang.org/src/net/http/fs.go?s=719:734#L23 (just skipping opening the file)
func GetCleanFilePath(dirRelativeFPath string, dirPath string) (secureFPath string, err error) {

	if filepath.Separator != '/' && strings.IndexRune(dirRelativeFPath, filepath.Separator) >= 0 ||
		strings.Contains(dirRelativeFPath, "\x00") {
		return "", errors.New("http: invalid character in file path")
	}
	dir := string(dirPath)
	if dir == "" {
		dir = "."
	}
	secureFPath = filepath.Join(dir, filepath.FromSlash(path.Clean("/"+dirRelativeFPath)))
	return
}

// TimeConfig defines how to format time for user output.
type TimeConfig struct {

	// Calendar date as stored in records, e.g. "2006-01-02". Must sort like the dates it represents.
	DateFormatString string
	// Long time format, contains date and time
	LongTimeFormatString string
	// Short time format, contains only time
	ShortTimeFormatString string
	// Creation timestamps
	TimestampFormatString string

	// Time format for file names
	FileTimeFormatString string
	TimeLocation         *time.Location
}

// GetDefaultTimeConfig returns the default time configuration (ISO dates, UTC).
func GetDefaultTimeConfig() *TimeConfig {
	return &TimeConfig{
		DateFormatString:      "2006-01-02",
		LongTimeFormatString:  "2006-01-02 15:04",
		ShortTimeFormatString: "15:04",
		TimestampFormatString: "2006-01-02T15:04:05.000Z07:00",
		FileTimeFormatString:  "2006-01-02",
		TimeLocation:          time.UTC,
	}
}

// GetDate formats t as a record date.
func (tc *TimeConfig) GetDate(t time.Time) string {
	return t.In(tc.TimeLocation).Format(tc.DateFormatString)
}

// GetTimestamp formats t as a creation timestamp.
func (tc *TimeConfig) GetTimestamp(t time.Time) string {
	return t.In(tc.TimeLocation).Format(tc.TimestampFormatString)
}

// GetDateForText gets a string-representation of t for documents, e.g. "2006-01-02 15:04"
func (tc *TimeConfig) GetDateForText(t time.Time) string {
	return t.In(tc.TimeLocation).Format(tc.LongTimeFormatString)
}

// GetDateForFileName gets a date string to be used in a file name, e.g. "2006-01-02"
func (tc *TimeConfig) GetDateForFileName(t time.Time) string {
	return t.In(tc.TimeLocation).Format(tc.FileTimeFormatString)
}

// ExportFileName builds the name of an exported artifact: {prefix}_{date}[_{lang}].{ext}
func ExportFileName(prefix string, t time.Time, lang string, ext string, timeConfig *TimeConfig) string {
	name := prefix + "_" + timeConfig.GetDateForFileName(t)
	if lang != "" {
		name += "_" + lang
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}

// WriteFileAtomic writes data to name inside dir. The file appears complete or not at all:
// data goes to a temporary file in the same directory which is renamed into place.
func WriteFileAtomic(dir string, name string, data []byte) (resPath string, err error) {
	resPath, err = GetCleanFilePath(name, dir)
	if err != nil {
		dbg.E(tTag, "Error getting file path for %s : %s", name, err)
		return
	}
	if err = os.MkdirAll(filepath.Dir(resPath), 0755); err != nil {
		dbg.E(tTag, "Error creating dir %s : %s", dir, err)
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(resPath), "."+filepath.Base(resPath)+".*.tmp")
	if err != nil {
		dbg.E(tTag, "Error creating temp file for %s : %s", resPath, err)
		return "", err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
			resPath = ""
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return
	}
	if err = tmp.Close(); err != nil {
		return
	}
	err = os.Rename(tmpName, resPath)
	return
}

// RegisterSqlite registers sqlite3 under name, if it isnt already
func RegisterSqlite(name string) (err error) {
	need_register := true
	for _, b := range sql.Drivers() {
		if b == name {
			need_register = false
		}
	}
	if need_register {
		sql.Register(name, &sqlite3.SQLiteDriver{})
	}
	return
}
