package release

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/foundry/shipit/internal/core/models"
)

func publishedSet(t *testing.T, version string, store *fakeStore) *Set {
	t.Helper()
	distDir := filepath.Join(t.TempDir(), "dist")
	writeDistTree(t, distDir, "myapp")

	set, err := NewSet(version, distDir, "myapp", store)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	if err := set.Upload(context.Background(), zerolog.Nop()); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return set
}

func decodeLatest(t *testing.T, store *fakeStore) models.FeedEntry {
	t.Helper()
	var entry models.FeedEntry
	if err := json.Unmarshal(store.objects[LatestFeedKey], &entry); err != nil {
		t.Fatalf("decoding latest feed: %v", err)
	}
	return entry
}

func decodeCumulative(t *testing.T, store *fakeStore) []models.FeedEntry {
	t.Helper()
	var entries []models.FeedEntry
	if err := json.Unmarshal(store.objects[CumulativeFeedKey], &entries); err != nil {
		t.Fatalf("decoding cumulative feed: %v", err)
	}
	return entries
}

func TestFeedPublisherFirstRelease(t *testing.T) {
	store := newFakeStore()
	set := publishedSet(t, "1.2.3", store)

	pub := NewFeedPublisher("1.2.3", set.Artifacts(), store)
	if err := pub.Upload(context.Background(), zerolog.Nop()); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	latest := decodeLatest(t, store)
	if latest.Version != "1.2.3" {
		t.Errorf("latest version = %q", latest.Version)
	}
	if len(latest.Platforms) != len(Platforms) {
		t.Fatalf("latest platforms = %d, want %d", len(latest.Platforms), len(Platforms))
	}
	for i, p := range latest.Platforms {
		if p.Name != Platforms[i] {
			t.Errorf("platforms[%d].Name = %s, want %s", i, p.Name, Platforms[i])
		}
		if p.URL == "" || p.Digest == "" {
			t.Errorf("platforms[%d] has empty url or digest: %+v", i, p)
		}
	}

	all := decodeCumulative(t, store)
	if len(all) != 1 {
		t.Fatalf("cumulative entries = %d, want 1", len(all))
	}
	if !all[0].Equal(latest) {
		t.Error("cumulative entry differs from latest entry")
	}
}

func TestFeedPublisherAppendsToHistory(t *testing.T) {
	store := newFakeStore()
	prior := models.FeedEntry{
		Version: "1.0.0",
		Platforms: []models.PlatformAsset{
			{Name: "linux-amd64", URL: "https://releases.test/1.0.0/linux-amd64/myapp", Digest: "abc"},
		},
	}
	store.seedCumulative(t, []models.FeedEntry{prior})

	set := publishedSet(t, "1.2.3", store)
	pub := NewFeedPublisher("1.2.3", set.Artifacts(), store)
	if err := pub.Upload(context.Background(), zerolog.Nop()); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	all := decodeCumulative(t, store)
	if len(all) != 2 {
		t.Fatalf("cumulative entries = %d, want 2", len(all))
	}
	if !all[0].Equal(prior) {
		t.Error("prior entry was modified")
	}
	if all[1].Version != "1.2.3" {
		t.Errorf("appended version = %q", all[1].Version)
	}

	// The latest feed is a full overwrite, never a merge.
	if got := decodeLatest(t, store); got.Version != "1.2.3" {
		t.Errorf("latest version = %q, want 1.2.3", got.Version)
	}
}

func TestFeedPublisherDeduplicates(t *testing.T) {
	store := newFakeStore()
	set := publishedSet(t, "1.2.3", store)

	pub := NewFeedPublisher("1.2.3", set.Artifacts(), store)
	if err := pub.Upload(context.Background(), zerolog.Nop()); err != nil {
		t.Fatalf("first Upload: %v", err)
	}
	// Publishing the structurally identical entry again must keep the
	// feed at size 1, not grow it.
	if err := pub.Upload(context.Background(), zerolog.Nop()); err != nil {
		t.Fatalf("second Upload: %v", err)
	}

	all := decodeCumulative(t, store)
	if len(all) != 1 {
		t.Errorf("cumulative entries = %d, want 1", len(all))
	}
}

func TestFeedPublisherUnreachableHistory(t *testing.T) {
	store := newFakeStore()
	set := publishedSet(t, "1.2.3", store)
	store.probeFail = true

	pub := NewFeedPublisher("1.2.3", set.Artifacts(), store)
	if err := pub.Upload(context.Background(), zerolog.Nop()); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	// An absent-or-unknown history defaults to empty; the new entry is
	// published against that baseline.
	store.probeFail = false
	all := decodeCumulative(t, store)
	if len(all) != 1 || all[0].Version != "1.2.3" {
		t.Errorf("unexpected cumulative feed: %+v", all)
	}
}

func TestFeedPublisherMalformedHistory(t *testing.T) {
	store := newFakeStore()
	set := publishedSet(t, "1.2.3", store)
	store.objects[CumulativeFeedKey] = []byte("{not json")

	pub := NewFeedPublisher("1.2.3", set.Artifacts(), store)
	if err := pub.Upload(context.Background(), zerolog.Nop()); err == nil {
		t.Fatal("expected error for malformed cumulative feed")
	}
}

func TestAppendUniqueOrder(t *testing.T) {
	a := models.FeedEntry{Version: "1.0.0"}
	b := models.FeedEntry{Version: "1.1.0"}

	got := appendUnique([]models.FeedEntry{a, b}, a)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Version != "1.0.0" || got[1].Version != "1.1.0" {
		t.Errorf("order changed: %+v", got)
	}
}
