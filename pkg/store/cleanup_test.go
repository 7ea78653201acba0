package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/draftloop/exemplar/pkg/post"
	"github.com/draftloop/exemplar/pkg/store"
)

var _ = Describe("Cleanup", func() {
	var (
		ctx context.Context
		dir string
		s   *store.Store
	)

	addAged := func(topic string, ageDays int) post.Post {
		p := mustPost(post.Input{
			Topic: topic, Text: topic + " body", ClientScope: "acme",
			CreatedAt: daysAgo(ageDays),
		})
		Expect(s.Add(ctx, p)).To(Succeed())
		return p
	}

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		s = openTestStore(dir, true)
	})

	AfterEach(func() {
		Expect(s.Close()).To(Succeed())
	})

	It("removes posts strictly older than the limit", func() {
		fresh := addAged("fresh", 10)
		mid := addAged("mid", 50)
		old := addAged("old", 100)

		removed, err := s.Cleanup(ctx, 45)
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(Equal(2))

		Expect(s.Size()).To(Equal(1))
		Expect(s.Exists(fresh.ContentHash)).To(BeTrue())
		Expect(s.Exists(mid.ContentHash)).To(BeFalse())
		Expect(s.Exists(old.ContentHash)).To(BeFalse())
	})

	It("removes nothing when every post is within the limit", func() {
		addAged("fresh", 10)
		addAged("newer", 1)

		removed, err := s.Cleanup(ctx, 45)
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(BeZero())
		Expect(s.Size()).To(Equal(2))
	})

	It("retains posts with unparsable timestamps", func() {
		Expect(s.Add(ctx, post.Post{
			ContentHash: "h-broken", Topic: "broken", Text: "body",
			ClientScope: "acme", CreatedAt: "???",
		})).To(Succeed())
		addAged("old", 100)

		removed, err := s.Cleanup(ctx, 45)
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(Equal(1))
		Expect(s.Exists("h-broken")).To(BeTrue())
	})

	It("keeps survivor sequence ordinals unchanged", func() {
		addAged("old", 100)
		survivor := addAged("survivor", 5)

		_, err := s.Cleanup(ctx, 45)
		Expect(err).NotTo(HaveOccurred())

		results := s.Retrieve(ctx, "", "acme", 0, 0)
		Expect(results).To(HaveLen(1))
		Expect(results[0].ContentHash).To(Equal(survivor.ContentHash))
		Expect(results[0].SequenceID).To(Equal(1))
	})

	It("rebuilds the index to match the surviving corpus", func() {
		addAged("fresh", 10)
		addAged("old", 100)
		addAged("ancient", 200)

		before := s.Stats(ctx)
		Expect(before.IndexSize).To(Equal(3))

		removed, err := s.Cleanup(ctx, 45)
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(Equal(2))

		after := s.Stats(ctx)
		Expect(after.IndexSize).To(Equal(1))
		Expect(after.TotalPosts).To(Equal(1))
	})

	It("persists the shrunken corpus", func() {
		addAged("fresh", 10)
		addAged("old", 100)

		_, err := s.Cleanup(ctx, 45)
		Expect(err).NotTo(HaveOccurred())

		reopened := openTestStore(dir, false)
		defer reopened.Close()

		Expect(reopened.Size()).To(Equal(1))
	})
})
