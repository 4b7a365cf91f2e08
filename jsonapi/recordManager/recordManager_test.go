package recordManager_test

import (
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/scgdepot/tankerlog/dbMan"
	. "github.com/scgdepot/tankerlog/jsonapi/recordManager"
	"github.com/scgdepot/tankerlog/models"
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type seqIDs struct{ n int }

func (g *seqIDs) New() (string, error) {
	g.n++
	return fmt.Sprintf("rec-%d", g.n), nil
}

type failingIDs struct{}

func (failingIDs) New() (string, error) { return "", errors.New("no entropy") }

func sampleInput(tanker string) RecordInput {
	return RecordInput{
		SerialNumber:    "01",
		TankerNumber:    tanker,
		EntryTime:       "08:15",
		BcNumber:        "BC-1",
		OrderedQuantity: 500,
		LoadedQuantity:  480,
		OldIndex:        1000,
		CurrentIndex:    1480,
		Destination:     "Tunis",
	}
}

var _ = Describe("RecordManager", func() {

	var (
		p     *dbMan.MemoryPersister
		s     *Store
		clock *fixedClock
		actor *models.Actor
	)

	BeforeEach(func() {
		var err error
		p = dbMan.NewMemoryPersister()
		clock = &fixedClock{t: time.Date(2024, 1, 10, 23, 30, 5, 123000000, time.UTC)}
		s, err = Open(p, WithClock(clock), WithIDGen(&seqIDs{}))
		Expect(err).ToNot(HaveOccurred())
		actor = &models.Actor{Id: "op-7", DisplayName: "Operator"}
	})

	Describe("Add", func() {
		It("should put the new record first with its immutable fields set", func() {
			defer GinkgoRecover()
			_, err := s.Add(sampleInput("T-1"), actor)
			Expect(err).ToNot(HaveOccurred())
			before := len(s.List())

			rec, err := s.Add(sampleInput("T-2"), actor)
			Expect(err).ToNot(HaveOccurred())
			list := s.List()
			Expect(list).To(HaveLen(before + 1))
			Expect(list[0]).To(Equal(rec))
			Expect(rec.Id).To(Equal("rec-2"))
			Expect(rec.Date).To(Equal("2024-01-10"))
			Expect(rec.CreatedAt).To(Equal("2024-01-10T23:30:05.123Z"))
			Expect(rec.CreatedBy).To(Equal("op-7"))
			Expect(p.Saves).To(Equal(2))
		})

		It("should use the UTC day", func() {
			defer GinkgoRecover()
			clock.t = time.Date(2024, 1, 11, 0, 30, 0, 0, time.FixedZone("CET", 3600))
			rec, err := s.Add(sampleInput("T-1"), actor)
			Expect(err).ToNot(HaveOccurred())
			Expect(rec.Date).To(Equal("2024-01-10"))
		})

		It("should reject a missing actor", func() {
			defer GinkgoRecover()
			_, err := s.Add(sampleInput("T-1"), nil)
			Expect(err).To(MatchError(ErrUnauthenticated))
			_, err = s.Add(sampleInput("T-1"), &models.Actor{})
			Expect(err).To(MatchError(ErrUnauthenticated))
			Expect(s.List()).To(BeEmpty())
			Expect(p.Saves).To(Equal(0))
		})

		It("should store the input as given", func() {
			defer GinkgoRecover()
			in := sampleInput("")
			in.LoadedQuantity = -1
			rec, err := s.Add(in, actor)
			Expect(err).ToNot(HaveOccurred())
			Expect(rec.TankerNumber).To(BeEmpty())
			Expect(rec.LoadedQuantity).To(Equal(-1.0))
			Expect(s.List()).To(HaveLen(1))
		})

		It("should allow an empty exit time", func() {
			defer GinkgoRecover()
			rec, err := s.Add(sampleInput("T-1"), actor)
			Expect(err).ToNot(HaveOccurred())
			Expect(rec.ExitTime).To(BeEmpty())
		})

		It("should fail without id", func() {
			defer GinkgoRecover()
			s2, err := Open(dbMan.NewMemoryPersister(), WithIDGen(failingIDs{}))
			Expect(err).ToNot(HaveOccurred())
			_, err = s2.Add(sampleInput("T-1"), actor)
			Expect(err).To(HaveOccurred())
			Expect(s2.List()).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("should merge the patch and keep immutable fields", func() {
			defer GinkgoRecover()
			rec, _ := s.Add(sampleInput("T-1"), actor)
			exit := "09:10"
			loaded := 495.5
			rowCount, err := s.Update(rec.Id, RecordPatch{ExitTime: &exit, LoadedQuantity: &loaded})
			Expect(err).ToNot(HaveOccurred())
			Expect(rowCount).To(BeEquivalentTo(1))

			got, err := s.Get(rec.Id)
			Expect(err).ToNot(HaveOccurred())
			Expect(got.ExitTime).To(Equal("09:10"))
			Expect(got.LoadedQuantity).To(Equal(495.5))
			Expect(got.TankerNumber).To(Equal("T-1"))
			Expect(got.Id).To(Equal(rec.Id))
			Expect(got.Date).To(Equal(rec.Date))
			Expect(got.CreatedBy).To(Equal(rec.CreatedBy))
			Expect(got.CreatedAt).To(Equal(rec.CreatedAt))
		})

		It("should clear the exit time with -", func() {
			defer GinkgoRecover()
			in := sampleInput("T-1")
			in.ExitTime = "09:00"
			rec, _ := s.Add(in, actor)
			clear := ClearValue
			_, err := s.Update(rec.Id, RecordPatch{ExitTime: &clear})
			Expect(err).ToNot(HaveOccurred())
			got, _ := s.Get(rec.Id)
			Expect(got.ExitTime).To(BeEmpty())
		})

		It("should change nothing for an unknown id but still persist", func() {
			defer GinkgoRecover()
			s.Add(sampleInput("T-1"), actor)
			before := s.List()
			saves := p.Saves
			dest := "Sfax"
			rowCount, err := s.Update("unknown", RecordPatch{Destination: &dest})
			Expect(err).ToNot(HaveOccurred())
			Expect(rowCount).To(BeEquivalentTo(0))
			Expect(s.List()).To(Equal(before))
			Expect(p.Saves).To(Equal(saves + 1))
		})

		It("should apply the patch as given", func() {
			defer GinkgoRecover()
			rec, _ := s.Add(sampleInput("T-1"), actor)
			neg := -3.0
			rowCount, err := s.Update(rec.Id, RecordPatch{OldIndex: &neg})
			Expect(err).ToNot(HaveOccurred())
			Expect(rowCount).To(BeEquivalentTo(1))
			got, _ := s.Get(rec.Id)
			Expect(got.OldIndex).To(Equal(-3.0))
		})
	})

	Describe("Delete", func() {
		It("should remove the record", func() {
			defer GinkgoRecover()
			a, _ := s.Add(sampleInput("T-1"), actor)
			b, _ := s.Add(sampleInput("T-2"), actor)
			rowCount, err := s.Delete(a.Id)
			Expect(err).ToNot(HaveOccurred())
			Expect(rowCount).To(BeEquivalentTo(1))
			Expect(s.List()).To(Equal([]models.TankerRecord{b}))
			_, err = s.Get(a.Id)
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("should be a no-op for an unknown id", func() {
			defer GinkgoRecover()
			s.Add(sampleInput("T-1"), actor)
			before := s.List()
			rowCount, err := s.Delete("unknown")
			Expect(err).ToNot(HaveOccurred())
			Expect(rowCount).To(BeEquivalentTo(0))
			Expect(s.List()).To(Equal(before))
		})
	})

	Describe("List", func() {
		It("should return a copy", func() {
			defer GinkgoRecover()
			s.Add(sampleInput("T-1"), actor)
			list := s.List()
			list[0].TankerNumber = "changed"
			Expect(s.List()[0].TankerNumber).To(Equal("T-1"))
		})

		It("should return an empty, non-nil list for a new store", func() {
			defer GinkgoRecover()
			Expect(s.List()).ToNot(BeNil())
			Expect(s.List()).To(BeEmpty())
		})
	})

	Context("when persisting fails", func() {
		It("should roll back every mutation", func() {
			defer GinkgoRecover()
			rec, _ := s.Add(sampleInput("T-1"), actor)
			before := s.List()
			p.FailSave = true

			_, err := s.Add(sampleInput("T-2"), actor)
			var pErr *PersistenceError
			Expect(errors.As(err, &pErr)).To(BeTrue())
			Expect(errors.Is(err, dbMan.ErrInjectedFailure)).To(BeTrue())

			dest := "Sfax"
			_, err = s.Update(rec.Id, RecordPatch{Destination: &dest})
			Expect(errors.As(err, &pErr)).To(BeTrue())

			_, err = s.Delete(rec.Id)
			Expect(errors.As(err, &pErr)).To(BeTrue())

			Expect(s.List()).To(Equal(before))

			p.FailSave = false
			reopened, err := Open(p)
			Expect(err).ToNot(HaveOccurred())
			Expect(reopened.List()).To(Equal(before))
		})
	})

	Describe("Open", func() {
		It("should load what an earlier store saved", func() {
			defer GinkgoRecover()
			s.Add(sampleInput("T-1"), actor)
			s.Add(sampleInput("T-2"), actor)
			reopened, err := Open(p)
			Expect(err).ToNot(HaveOccurred())
			Expect(reopened.List()).To(Equal(s.List()))
		})

		It("should report a broken entry", func() {
			defer GinkgoRecover()
			broken := dbMan.NewMemoryPersister()
			broken.Save([]byte{0xc1, 0xc1})
			_, err := Open(broken)
			var pErr *PersistenceError
			Expect(errors.As(err, &pErr)).To(BeTrue())
		})

		It("should report a failing load", func() {
			defer GinkgoRecover()
			broken := dbMan.NewMemoryPersister()
			broken.FailLoad = true
			_, err := Open(broken)
			Expect(errors.Is(err, dbMan.ErrInjectedFailure)).To(BeTrue())
		})
	})

	Describe("Import", func() {
		It("should skip known ids and keep the rest in front", func() {
			defer GinkgoRecover()
			old, _ := s.Add(sampleInput("T-1"), actor)
			added, err := s.Import([]models.TankerRecord{
				{Id: "imp-1", TankerNumber: "I-1"},
				{Id: old.Id, TankerNumber: "dup"},
				{Id: "imp-2", TankerNumber: "I-2"},
				{Id: "imp-1", TankerNumber: "dup"},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(added).To(Equal(2))
			list := s.List()
			Expect(list).To(HaveLen(3))
			Expect(list[0].Id).To(Equal("imp-1"))
			Expect(list[1].Id).To(Equal("imp-2"))
			Expect(list[2]).To(Equal(old))
		})
	})

	Describe("NextSerialNumber", func() {
		It("should count up and wrap after 08", func() {
			defer GinkgoRecover()
			Expect(NextSerialNumber("01")).To(Equal("02"))
			Expect(NextSerialNumber("07")).To(Equal("08"))
			Expect(NextSerialNumber("08")).To(Equal("01"))
			Expect(NextSerialNumber("3")).To(Equal("04"))
		})

		It("should start at 01 for anything else", func() {
			defer GinkgoRecover()
			Expect(NextSerialNumber("")).To(Equal("01"))
			Expect(NextSerialNumber("xx")).To(Equal("01"))
			Expect(NextSerialNumber("00")).To(Equal("01"))
			Expect(NextSerialNumber("12")).To(Equal("01"))
		})

		It("should be suggested from the newest record", func() {
			defer GinkgoRecover()
			Expect(s.SuggestSerialNumber()).To(Equal("01"))
			in := sampleInput("T-1")
			in.SerialNumber = "05"
			s.Add(in, actor)
			Expect(s.SuggestSerialNumber()).To(Equal("06"))
		})
	})
})
