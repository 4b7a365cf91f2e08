package recordManager_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/scgdepot/tankerlog/datapolish"
	"github.com/scgdepot/tankerlog/dbMan"
	. "github.com/scgdepot/tankerlog/jsonapi/recordManager"
	"github.com/scgdepot/tankerlog/models"
)

const validForm = `{"serialNumber":"01","tankerNumber":"T-1","entryTime":"08:15","bcNumber":"BC-1",
"orderedQuantity":"500","loadedQuantity":"500","oldIndex":"0","currentIndex":"500","destination":"Tunis"}`

var _ = Describe("JSON", func() {

	var (
		p     *dbMan.MemoryPersister
		s     *Store
		actor *models.Actor
	)

	BeforeEach(func() {
		var err error
		p = dbMan.NewMemoryPersister()
		s, err = Open(p, WithClock(&fixedClock{t: time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)}), WithIDGen(&seqIDs{}))
		Expect(err).ToNot(HaveOccurred())
		actor = &models.Actor{Id: "op-1"}
	})

	Describe("JSONCreateRecord", func() {
		It("should create the record", func() {
			defer GinkgoRecover()
			res, err := JSONCreateRecord(validForm, actor, "en", s)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Success).To(BeTrue())
			Expect(res.LastKey).To(Equal("rec-1"))
			Expect(s.List()).To(HaveLen(1))
		})

		It("should answer unauthenticated without actor", func() {
			defer GinkgoRecover()
			res, err := JSONCreateRecord(validForm, nil, "en", s)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Error).To(BeTrue())
			Expect(res.ErrorCode).To(Equal(models.ErrCodeUnauthenticated))
			Expect(res.ErrorMessage).To(Equal("Authentication required"))
			Expect(s.List()).To(BeEmpty())
		})

		It("should localize per-field errors", func() {
			defer GinkgoRecover()
			res, err := JSONCreateRecord(`{"serialNumber":"01"}`, actor, "fr", s)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.ErrorCode).To(Equal(models.ErrCodeInvalidArgument))
			Expect(res.Errors).To(HaveKey("tankerNumber"))
			Expect(res.Errors["tankerNumber"]).ToNot(Equal(ValidationRequired))
		})

		It("should answer invalid format for broken JSON", func() {
			defer GinkgoRecover()
			res, err := JSONCreateRecord(`{`, actor, "en", s)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.ErrorMessage).To(Equal("Invalid format"))
		})

		It("should answer a persistence error", func() {
			defer GinkgoRecover()
			p.FailSave = true
			res, err := JSONCreateRecord(validForm, actor, "en", s)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.ErrorCode).To(Equal(models.ErrCodePersistence))
			Expect(res.ErrorMessage).To(Equal("Could not persist data"))
		})
	})

	Describe("JSONUpdateRecord / JSONDeleteRecord", func() {
		It("should update and delete", func() {
			defer GinkgoRecover()
			created, _ := JSONCreateRecord(validForm, actor, "en", s)
			upd, err := JSONUpdateRecord(created.LastKey, `{"exitTime":"09:00","id":"ignored"}`, "en", s)
			Expect(err).ToNot(HaveOccurred())
			Expect(upd.Success).To(BeTrue())
			Expect(upd.RowCount).To(BeEquivalentTo(1))
			Expect(upd.Result.(models.TankerRecord).ExitTime).To(Equal("09:00"))
			Expect(upd.Result.(models.TankerRecord).Id).To(Equal(created.LastKey))

			del, err := JSONDeleteRecord(created.LastKey, "en", s)
			Expect(err).ToNot(HaveOccurred())
			Expect(del.Success).To(BeTrue())
			Expect(del.RowCount).To(BeEquivalentTo(1))
			Expect(s.List()).To(BeEmpty())
		})

		It("should reject an invalid patch without touching the store", func() {
			defer GinkgoRecover()
			created, _ := JSONCreateRecord(validForm, actor, "en", s)
			saves := p.Saves
			upd, err := JSONUpdateRecord(created.LastKey, `{"oldIndex":-3,"tankerNumber":""}`, "en", s)
			Expect(err).ToNot(HaveOccurred())
			Expect(upd.Error).To(BeTrue())
			Expect(upd.ErrorCode).To(Equal(models.ErrCodeInvalidArgument))
			Expect(upd.Errors).To(Equal(map[string]string{
				"oldIndex":     "Value must not be negative",
				"tankerNumber": "This field is required",
			}))
			Expect(p.Saves).To(Equal(saves))
			got, _ := s.Get(created.LastKey)
			Expect(got.OldIndex).To(Equal(0.0))
			Expect(got.TankerNumber).To(Equal("T-1"))
		})

		It("should reject an empty patch", func() {
			defer GinkgoRecover()
			upd, _ := JSONUpdateRecord("rec-1", `{}`, "en", s)
			Expect(upd.Error).To(BeTrue())
			Expect(upd.ErrorMessage).To(Equal("Please fill at least one entry."))
		})
	})

	Describe("JSONGetRecords / JSONGetEmptyRecord", func() {
		It("should filter and suggest the next serial", func() {
			defer GinkgoRecover()
			JSONCreateRecord(validForm, actor, "en", s)
			res, err := JSONGetRecords(datapolish.Filter{Text: "nothing"}, s)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Records).To(BeEmpty())
			res, _ = JSONGetRecords(datapolish.Filter{Date: "2024-01-10"}, s)
			Expect(res.Records).To(HaveLen(1))

			empty, _ := JSONGetEmptyRecord(s)
			Expect(empty.Result.(RecordForm).SerialNumber).To(BeEquivalentTo("02"))
		})
	})

	Describe("JSONImportLegacy", func() {
		It("should import the browser export", func() {
			defer GinkgoRecover()
			data := []byte(`[
				{"id":"a1","serialNumber":"03","tankerNumber":"T-3","entryTime":"10:00","exitTime":"",
				 "bcNumber":"BC3","orderedQuantity":"700","loadedQuantity":700,"oldIndex":0,"currentIndex":700,
				 "destination":"Sfax","date":"2023-12-01","createdBy":"u1","createdAt":"2023-12-01T10:00:00.000Z"},
				{"tankerNumber":"T-4","entryTime":"11:00","bcNumber":"BC4","orderedQuantity":1,"loadedQuantity":1,
				 "oldIndex":0,"currentIndex":1,"destination":"Gabès","createdAt":"2023-11-30T09:00:00.000Z"}
			]`)
			res, err := JSONImportLegacy(data, actor, "en", s)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Success).To(BeTrue())
			Expect(res.Imported).To(Equal(2))

			list := s.List()
			Expect(list[0]).To(Equal(models.TankerRecord{
				Id: "a1", SerialNumber: "03", TankerNumber: "T-3", EntryTime: "10:00", BcNumber: "BC3",
				OrderedQuantity: 700, LoadedQuantity: 700, CurrentIndex: 700, Destination: "Sfax",
				Date: "2023-12-01", CreatedBy: "u1", CreatedAt: "2023-12-01T10:00:00.000Z",
			}))
			Expect(list[1].Id).To(Equal("rec-1"))
			Expect(list[1].Date).To(Equal("2023-11-30"))
			Expect(list[1].CreatedBy).To(Equal("op-1"))

			again, _ := JSONImportLegacy(data[:0], actor, "en", s)
			Expect(again.Error).To(BeTrue())
		})

		It("should accept the localStorage dump", func() {
			defer GinkgoRecover()
			res, _ := JSONImportLegacy([]byte(`{"scg_records":[{"id":"z","tankerNumber":"T","entryTime":"1:00",
				"bcNumber":"B","orderedQuantity":0,"loadedQuantity":0,"oldIndex":0,"currentIndex":0,"destination":"D"}]}`), actor, "en", s)
			Expect(res.Imported).To(Equal(1))
		})

		It("should report broken records by index", func() {
			defer GinkgoRecover()
			res, _ := JSONImportLegacy([]byte(`[{"tankerNumber":"T","entryTime":"1:00","bcNumber":"B",
				"orderedQuantity":"x","loadedQuantity":-1,"oldIndex":0,"currentIndex":0,"destination":"D"}]`), actor, "en", s)
			Expect(res.ErrorCode).To(Equal(models.ErrCodeInvalidArgument))
			Expect(res.Errors).To(HaveKeyWithValue("0.orderedQuantity", "Value must be a number"))
			Expect(res.Errors).To(HaveKeyWithValue("0.loadedQuantity", "Value must not be negative"))
			Expect(s.List()).To(BeEmpty())
		})

		It("should reject something that is no list", func() {
			defer GinkgoRecover()
			res, _ := JSONImportLegacy([]byte(`{"a":1}`), actor, "en", s)
			Expect(res.ErrorCode).To(Equal(models.ErrCodeInvalidArgument))
		})
	})
})
