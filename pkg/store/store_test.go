package store_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/draftloop/exemplar/pkg/post"
	"github.com/draftloop/exemplar/pkg/store"
)

var _ = Describe("Store", func() {
	var (
		ctx context.Context
		dir string
		s   *store.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		s = openTestStore(dir, true)
	})

	AfterEach(func() {
		Expect(s.Close()).To(Succeed())
	})

	Describe("Add", func() {
		It("stores a post and assigns insertion order", func() {
			p := mustPost(post.Input{Topic: "pricing", Text: "charge more", ClientScope: "acme"})
			Expect(s.Add(ctx, p)).To(Succeed())

			Expect(s.Size()).To(Equal(1))
			Expect(s.Exists(p.ContentHash)).To(BeTrue())
		})

		It("persists metadata and the hash set to disk", func() {
			p := mustPost(post.Input{Topic: "pricing", Text: "charge more", ClientScope: "acme"})
			Expect(s.Add(ctx, p)).To(Succeed())

			for _, name := range []string{"metadata.json", "hashes.json"} {
				_, err := os.Stat(filepath.Join(dir, name))
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("treats a duplicate hash as an idempotent no-op", func() {
			p := mustPost(post.Input{Topic: "pricing", Text: "charge more", ClientScope: "acme"})
			Expect(s.Add(ctx, p)).To(Succeed())
			Expect(s.Add(ctx, p)).To(Succeed())
			Expect(s.Add(ctx, p)).To(Succeed())

			Expect(s.Size()).To(Equal(1))

			stats := s.Stats(ctx)
			Expect(stats.TotalPosts).To(Equal(1))
			Expect(stats.IndexSize).To(Equal(1))
		})

		It("dedups equivalent content arriving through different paths", func() {
			a := mustPost(post.Input{Topic: "Pricing Tips", Text: "Charge   for outcomes."})
			b := mustPost(post.Input{Topic: "pricing tips", Text: "charge for outcomes."})
			Expect(a.ContentHash).To(Equal(b.ContentHash))

			Expect(s.Add(ctx, a)).To(Succeed())
			Expect(s.Add(ctx, b)).To(Succeed())
			Expect(s.Size()).To(Equal(1))
		})

		It("rejects a post without a content hash", func() {
			err := s.Add(ctx, post.Post{Topic: "no hash"})
			Expect(err).To(MatchError(store.ErrNoHash))
		})
	})

	Describe("reopening", func() {
		It("reloads the corpus and continues the sequence", func() {
			first := mustPost(post.Input{Topic: "one", Text: "a", ClientScope: "acme"})
			second := mustPost(post.Input{Topic: "two", Text: "b", ClientScope: "acme"})
			Expect(s.Add(ctx, first)).To(Succeed())
			Expect(s.Add(ctx, second)).To(Succeed())

			reopened := openTestStore(dir, false)
			defer reopened.Close()

			Expect(reopened.Size()).To(Equal(2))
			Expect(reopened.Exists(first.ContentHash)).To(BeTrue())

			third := mustPost(post.Input{Topic: "three", Text: "c", ClientScope: "acme"})
			Expect(reopened.Add(ctx, third)).To(Succeed())

			posts := reopened.Retrieve(ctx, "", "acme", 0, 0)
			seqs := make(map[int]bool)
			for _, p := range posts {
				seqs[p.SequenceID] = true
			}
			Expect(seqs).To(HaveLen(3))
		})

		It("rebuilds the hash set from metadata when hashes.json is missing", func() {
			p := mustPost(post.Input{Topic: "one", Text: "a", ClientScope: "acme"})
			Expect(s.Add(ctx, p)).To(Succeed())

			Expect(os.Remove(filepath.Join(dir, "hashes.json"))).To(Succeed())

			reopened := openTestStore(dir, false)
			defer reopened.Close()

			Expect(reopened.Exists(p.ContentHash)).To(BeTrue())
		})

		It("starts empty when metadata is corrupt", func() {
			Expect(os.WriteFile(filepath.Join(dir, "metadata.json"), []byte("{not json"), 0o600)).To(Succeed())

			reopened := openTestStore(dir, false)
			defer reopened.Close()

			Expect(reopened.Size()).To(BeZero())
		})
	})

	Describe("Stats", func() {
		It("reports zeroes for an empty store", func() {
			stats := s.Stats(ctx)
			Expect(stats.TotalPosts).To(BeZero())
			Expect(stats.UniqueScopes).To(BeZero())
			Expect(stats.AvgVoiceQuality).To(BeZero())
			Expect(stats.AvgContentQuality).To(BeZero())
			Expect(stats.IndexAvailable).To(BeTrue())
			Expect(stats.IndexSize).To(BeZero())
		})

		It("averages only positive quality scores", func() {
			Expect(s.Add(ctx, post.Post{
				ContentHash: "h1", Topic: "a", Text: "a", ClientScope: "acme",
				VoiceQuality: 9, ContentQuality: 7,
			})).To(Succeed())
			Expect(s.Add(ctx, post.Post{
				ContentHash: "h2", Topic: "b", Text: "b", ClientScope: "globex",
				VoiceQuality: 8, ContentQuality: 0,
			})).To(Succeed())
			Expect(s.Add(ctx, post.Post{
				ContentHash: "h3", Topic: "c", Text: "c", ClientScope: "acme",
				VoiceQuality: 0, ContentQuality: 0,
			})).To(Succeed())

			stats := s.Stats(ctx)
			Expect(stats.TotalPosts).To(Equal(3))
			Expect(stats.UniqueScopes).To(Equal(2))
			Expect(stats.AvgVoiceQuality).To(Equal(8.5))
			Expect(stats.AvgContentQuality).To(Equal(7.0))
		})

		It("reports the index unavailable when none is attached", func() {
			bare := openTestStore(GinkgoT().TempDir(), false)
			defer bare.Close()

			stats := bare.Stats(ctx)
			Expect(stats.IndexAvailable).To(BeFalse())
			Expect(stats.IndexSize).To(BeZero())
		})
	})
})
