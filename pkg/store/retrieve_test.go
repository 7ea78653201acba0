package store_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/draftloop/exemplar/pkg/post"
	"github.com/draftloop/exemplar/pkg/store"
)

var _ = Describe("Retrieve", func() {
	var (
		ctx context.Context
		dir string
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
	})

	It("returns nil for an empty scope", func() {
		s := openTestStore(dir, true)
		defer s.Close()

		Expect(s.Retrieve(ctx, "anything", "nobody", 0, 5)).To(BeNil())
	})

	It("isolates scopes from each other", func() {
		s := openTestStore(dir, true)
		defer s.Close()

		Expect(s.Add(ctx, mustPost(post.Input{
			Topic: "pricing", Text: "acme take", ClientScope: "acme", CreatedAt: daysAgo(1),
		}))).To(Succeed())
		Expect(s.Add(ctx, mustPost(post.Input{
			Topic: "pricing", Text: "globex take", ClientScope: "globex", CreatedAt: daysAgo(1),
		}))).To(Succeed())

		results := s.Retrieve(ctx, "pricing", "acme", 0, 0)
		Expect(results).To(HaveLen(1))
		Expect(results[0].ClientScope).To(Equal("acme"))
	})

	Describe("similarity ranking", func() {
		It("ranks the post matching the query first when the index covers the corpus", func() {
			s := openTestStore(dir, true)
			defer s.Close()

			target := mustPost(post.Input{
				Topic: "hiring", Text: "hire slow fire fast", ClientScope: "acme", CreatedAt: daysAgo(1),
			})
			Expect(s.Add(ctx, mustPost(post.Input{
				Topic: "pricing", Text: "charge more", ClientScope: "acme", CreatedAt: daysAgo(1),
			}))).To(Succeed())
			Expect(s.Add(ctx, target)).To(Succeed())
			Expect(s.Add(ctx, mustPost(post.Input{
				Topic: "marketing", Text: "post daily", ClientScope: "acme", CreatedAt: daysAgo(1),
			}))).To(Succeed())

			results := s.Retrieve(ctx, target.EmbeddingInput(), "acme", 0, 0)
			Expect(results).To(HaveLen(3))
			Expect(results[0].ContentHash).To(Equal(target.ContentHash))
		})
	})

	Describe("fallback ranking", func() {
		addScored := func(s *store.Store, topic string, voice, content int) post.Post {
			p := mustPost(post.Input{
				Topic:          topic,
				Text:           topic + " body",
				ClientScope:    "acme",
				VoiceQuality:   voice,
				ContentQuality: content,
				CreatedAt:      daysAgo(5),
			})
			Expect(s.Add(ctx, p)).To(Succeed())
			return p
		}

		It("is used when no index is attached", func() {
			s := openTestStore(dir, false)
			defer s.Close()

			first := addScored(s, "first", 9, 8)
			second := addScored(s, "second", 8, 9)
			addScored(s, "third", 7, 7)

			results := s.Retrieve(ctx, "anything", "acme", 0, 2)
			Expect(results).To(HaveLen(2))
			Expect(results[0].ContentHash).To(Equal(first.ContentHash))
			Expect(results[1].ContentHash).To(Equal(second.ContentHash))
		})

		It("is used when the index lags the corpus", func() {
			seeded := openTestStore(dir, false)
			addScored(seeded, "high", 10, 10)
			addScored(seeded, "low", 2, 2)
			Expect(seeded.Close()).To(Succeed())

			// A fresh index is empty, so it cannot cover the reloaded corpus.
			s := openTestStore(dir, true)
			defer s.Close()

			results := s.Retrieve(ctx, "low body", "acme", 0, 0)
			Expect(results).To(HaveLen(2))
			Expect(results[0].Topic).To(Equal("high"))
		})

		It("breaks score ties by insertion order", func() {
			s := openTestStore(dir, false)
			defer s.Close()

			first := addScored(s, "tie one", 8, 8)
			second := addScored(s, "tie two", 8, 8)

			results := s.Retrieve(ctx, "", "acme", 0, 0)
			Expect(results[0].ContentHash).To(Equal(first.ContentHash))
			Expect(results[1].ContentHash).To(Equal(second.ContentHash))
		})

		It("prefers newer posts at equal quality", func() {
			s := openTestStore(dir, false)
			defer s.Close()

			old := mustPost(post.Input{
				Topic: "old", Text: "old body", ClientScope: "acme",
				VoiceQuality: 8, ContentQuality: 8, CreatedAt: daysAgo(80),
			})
			fresh := mustPost(post.Input{
				Topic: "fresh", Text: "fresh body", ClientScope: "acme",
				VoiceQuality: 8, ContentQuality: 8, CreatedAt: daysAgo(1),
			})
			Expect(s.Add(ctx, old)).To(Succeed())
			Expect(s.Add(ctx, fresh)).To(Succeed())

			results := s.Retrieve(ctx, "", "acme", 0, 0)
			Expect(results[0].Topic).To(Equal("fresh"))
		})

		It("ranks posts with unparsable timestamps with a neutral recency", func() {
			s := openTestStore(dir, false)
			defer s.Close()

			Expect(s.Add(ctx, post.Post{
				ContentHash: "h-broken", Topic: "broken clock", Text: "body",
				ClientScope: "acme", VoiceQuality: 10, ContentQuality: 10,
				CreatedAt: "not a timestamp",
			})).To(Succeed())
			Expect(s.Add(ctx, mustPost(post.Input{
				Topic: "recent", Text: "body", ClientScope: "acme",
				VoiceQuality: 5, ContentQuality: 5, CreatedAt: daysAgo(1),
			}))).To(Succeed())

			results := s.Retrieve(ctx, "", "acme", 0, 0)
			Expect(results).To(HaveLen(2))
			Expect(results[0].Topic).To(Equal("broken clock"))
		})
	})

	Describe("limit handling", func() {
		BeforeEach(func() {
			s := openTestStore(dir, false)
			defer s.Close()

			for _, topic := range []string{"a", "b", "c", "d"} {
				Expect(s.Add(ctx, mustPost(post.Input{
					Topic: topic, Text: topic + " body", ClientScope: "acme", CreatedAt: daysAgo(2),
				}))).To(Succeed())
			}
		})

		It("returns the whole scope when limit is zero", func() {
			s := openTestStore(dir, false)
			defer s.Close()

			Expect(s.Retrieve(ctx, "", "acme", 0, 0)).To(HaveLen(4))
		})

		It("truncates to the limit", func() {
			s := openTestStore(dir, false)
			defer s.Close()

			Expect(s.Retrieve(ctx, "", "acme", 0, 3)).To(HaveLen(3))
		})

		It("accepts a minimum age without applying it", func() {
			s := openTestStore(dir, false)
			defer s.Close()

			Expect(s.Retrieve(ctx, "", "acme", 30, 0)).To(HaveLen(4))
		})
	})
})
