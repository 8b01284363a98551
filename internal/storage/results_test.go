package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/hoekwacht/hoekwacht/internal/common"
	"github.com/hoekwacht/hoekwacht/internal/model"
	"github.com/hoekwacht/hoekwacht/internal/service"
)

func scoredAd(id, title string, percent float64) model.ScoredAd {
	return model.ScoredAd{
		Ad: model.Ad{
			ID:         id,
			Title:      title,
			URL:        "https://ads.example/" + id,
			CornerSide: model.CornerLeft,
			PhotoURLs:  []string{"p1", "p2"},
			Price:      intp(450),
			DistanceKM: intp(12),
		},
		MatchPercent: percent,
	}
}

func TestUpsertResultsCreates(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	client := createTestClient(t, store)
	req := createTestSearchRequest(t, store, client.ID)

	outcomes, err := store.UpsertResults(ctx, req, []model.ScoredAd{
		scoredAd("a1", "Hoekbank links beige", 87.5),
		scoredAd("a2", "Hoekbank links grijs", 62.5),
	})
	if err != nil {
		t.Fatalf("UpsertResults failed: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("Expected 2 outcomes, got %d", len(outcomes))
	}
	for _, o := range outcomes {
		if !o.IsNew {
			t.Errorf("Expected result %d to be new", o.Result.ID)
		}
		if o.Result.Status != model.StatusNew {
			t.Errorf("Expected status new, got %s", o.Result.Status)
		}
		if o.Result.ID == 0 {
			t.Error("Expected result ID to be set")
		}
	}
}

func TestUpsertResultsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	client := createTestClient(t, store)
	req := createTestSearchRequest(t, store, client.ID)

	ads := []model.ScoredAd{scoredAd("a1", "Hoekbank links beige", 87.5)}

	first, err := store.UpsertResults(ctx, req, ads)
	if err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	second, err := store.UpsertResults(ctx, req, ads)
	if err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	if !first[0].IsNew {
		t.Error("Expected first upsert to create")
	}
	if second[0].IsNew {
		t.Error("Expected second upsert to update, not create")
	}
	if second[0].Result.ID != first[0].Result.ID {
		t.Errorf("Expected same row, got %d then %d", first[0].Result.ID, second[0].Result.ID)
	}

	results, err := store.ListResults(ctx, req.ID, service.ResultFilter{})
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result after duplicate upsert, got %d", len(results))
	}
}

func TestUpsertResultsPreservesWorkflowFields(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	client := createTestClient(t, store)
	req := createTestSearchRequest(t, store, client.ID)

	first, err := store.UpsertResults(ctx, req, []model.ScoredAd{
		scoredAd("a1", "Hoekbank links beige", 87.5),
	})
	if err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	id := first[0].Result.ID

	if err := store.UpdateResultStatus(ctx, id, model.StatusViewed, "called the seller"); err != nil {
		t.Fatalf("UpdateResultStatus failed: %v", err)
	}
	if err := store.MarkResultForwarded(ctx, id); err != nil {
		t.Fatalf("MarkResultForwarded failed: %v", err)
	}

	// Same ad seen again with a new price and percent.
	updated := scoredAd("a1", "Hoekbank links beige AANBIEDING", 95.0)
	updated.Ad.Price = intp(400)

	second, err := store.UpsertResults(ctx, req, []model.ScoredAd{updated})
	if err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	if second[0].IsNew {
		t.Error("Expected an update")
	}

	got, err := store.GetResult(ctx, id)
	if err != nil {
		t.Fatalf("GetResult failed: %v", err)
	}
	if got.Title != "Hoekbank links beige AANBIEDING" {
		t.Errorf("Expected snapshot title refreshed, got %q", got.Title)
	}
	if got.Price == nil || *got.Price != 400 {
		t.Errorf("Expected snapshot price refreshed, got %v", got.Price)
	}
	if got.MatchPercent != 95.0 {
		t.Errorf("Expected match percent refreshed, got %v", got.MatchPercent)
	}
	if got.Status != model.StatusViewed {
		t.Errorf("Expected status preserved, got %s", got.Status)
	}
	if got.Notes != "called the seller" {
		t.Errorf("Expected notes preserved, got %q", got.Notes)
	}
	if !got.Forwarded {
		t.Error("Expected forwarded flag preserved")
	}
	if !got.CreatedAt.Equal(first[0].Result.CreatedAt) {
		t.Errorf("Expected created_at preserved, got %v vs %v",
			got.CreatedAt, first[0].Result.CreatedAt)
	}
}

func TestUpsertResultsRoundTripsPhotos(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	client := createTestClient(t, store)
	req := createTestSearchRequest(t, store, client.ID)

	outcomes, err := store.UpsertResults(ctx, req, []model.ScoredAd{
		scoredAd("a1", "Hoekbank links", 80.0),
	})
	if err != nil {
		t.Fatalf("UpsertResults failed: %v", err)
	}

	got, err := store.GetResult(ctx, outcomes[0].Result.ID)
	if err != nil {
		t.Fatalf("GetResult failed: %v", err)
	}
	if len(got.PhotoURLs) != 2 || got.PhotoURLs[0] != "p1" {
		t.Errorf("Unexpected photo urls: %v", got.PhotoURLs)
	}
}

func TestListResultsFilters(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	client := createTestClient(t, store)
	req := createTestSearchRequest(t, store, client.ID)

	cheap := scoredAd("a1", "Hoekbank links beige", 90.0)
	cheap.Ad.Price = intp(300)
	pricey := scoredAd("a2", "Hoekbank rechts grijs", 60.0)
	pricey.Ad.Price = intp(800)
	pricey.Ad.CornerSide = model.CornerRight

	if _, err := store.UpsertResults(ctx, req, []model.ScoredAd{cheap, pricey}); err != nil {
		t.Fatalf("UpsertResults failed: %v", err)
	}

	all, err := store.ListResults(ctx, req.ID, service.ResultFilter{})
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(all))
	}
	if all[0].MatchPercent < all[1].MatchPercent {
		t.Error("Expected results ordered by match percent descending")
	}

	minPercent := 75.0
	high, err := store.ListResults(ctx, req.ID, service.ResultFilter{MinMatchPercent: &minPercent})
	if err != nil {
		t.Fatalf("ListResults with min percent failed: %v", err)
	}
	if len(high) != 1 || high[0].AdID != "a1" {
		t.Errorf("Unexpected filtered results: %+v", high)
	}

	maxPrice := 500
	affordable, err := store.ListResults(ctx, req.ID, service.ResultFilter{MaxPrice: &maxPrice})
	if err != nil {
		t.Fatalf("ListResults with max price failed: %v", err)
	}
	if len(affordable) != 1 || affordable[0].AdID != "a1" {
		t.Errorf("Unexpected filtered results: %+v", affordable)
	}

	side := model.CornerRight
	rightOnly, err := store.ListResults(ctx, req.ID, service.ResultFilter{CornerSide: &side})
	if err != nil {
		t.Fatalf("ListResults with corner side failed: %v", err)
	}
	if len(rightOnly) != 1 || rightOnly[0].AdID != "a2" {
		t.Errorf("Unexpected filtered results: %+v", rightOnly)
	}

	status := model.StatusNew
	fresh, err := store.ListResults(ctx, req.ID, service.ResultFilter{Status: &status})
	if err != nil {
		t.Fatalf("ListResults with status failed: %v", err)
	}
	if len(fresh) != 2 {
		t.Errorf("Expected 2 new results, got %d", len(fresh))
	}
}

func TestUpdateResultStatusKeepsNotesWhenEmpty(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	client := createTestClient(t, store)
	req := createTestSearchRequest(t, store, client.ID)

	outcomes, err := store.UpsertResults(ctx, req, []model.ScoredAd{
		scoredAd("a1", "Hoekbank links", 80.0),
	})
	if err != nil {
		t.Fatalf("UpsertResults failed: %v", err)
	}
	id := outcomes[0].Result.ID

	if err := store.UpdateResultStatus(ctx, id, model.StatusViewed, "first note"); err != nil {
		t.Fatalf("UpdateResultStatus failed: %v", err)
	}
	if err := store.UpdateResultStatus(ctx, id, model.StatusCompleted, ""); err != nil {
		t.Fatalf("UpdateResultStatus failed: %v", err)
	}

	got, err := store.GetResult(ctx, id)
	if err != nil {
		t.Fatalf("GetResult failed: %v", err)
	}
	if got.Status != model.StatusCompleted {
		t.Errorf("Expected status completed, got %s", got.Status)
	}
	if got.Notes != "first note" {
		t.Errorf("Expected notes preserved, got %q", got.Notes)
	}
}

func TestUpdateResultStatusInvalid(t *testing.T) {
	store := createTestStorage(t)

	err := store.UpdateResultStatus(context.Background(), 1, model.ResultStatus("archived"), "")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus, got %v", err)
	}
}

func TestGetResultNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetResult(context.Background(), 999)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMarkResultForwardedNotFound(t *testing.T) {
	store := createTestStorage(t)

	err := store.MarkResultForwarded(context.Background(), 999)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
