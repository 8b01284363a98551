package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hoekwacht/hoekwacht/internal/common"
	"github.com/hoekwacht/hoekwacht/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store
}

func createTestClient(t *testing.T, store *SQLiteStorage) *model.Client {
	t.Helper()

	client := &model.Client{
		Name:  "Anne",
		Email: "anne@example.com",
	}
	if err := store.CreateClient(context.Background(), client); err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func createTestSearchRequest(t *testing.T, store *SQLiteStorage, clientID int64) *model.SearchRequest {
	t.Helper()

	budget := 500
	maxDist := 20
	req := &model.SearchRequest{
		ClientID:      clientID,
		CornerSide:    model.CornerLeft,
		Budget:        &budget,
		MaxDistanceKM: &maxDist,
		IsActive:      true,
	}
	if err := store.CreateSearchRequest(context.Background(), req); err != nil {
		t.Fatalf("Failed to create search request: %v", err)
	}
	return req
}

func intp(v int) *int { return &v }

func TestCreateAndGetClient(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	client := &model.Client{
		Name:     "Anne",
		Email:    "anne@example.com",
		WhatsApp: "+31600000000",
	}
	if err := store.CreateClient(ctx, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	if client.ID == 0 {
		t.Error("Expected client ID to be set")
	}
	if client.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}

	got, err := store.GetClient(ctx, client.ID)
	if err != nil {
		t.Fatalf("GetClient failed: %v", err)
	}
	if got.Name != "Anne" || got.Email != "anne@example.com" || got.WhatsApp != "+31600000000" {
		t.Errorf("Unexpected client: %+v", got)
	}
}

func TestGetClientNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetClient(context.Background(), 999)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListClients(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{"Anne", "Bram"} {
		if err := store.CreateClient(ctx, &model.Client{Name: name}); err != nil {
			t.Fatalf("CreateClient failed: %v", err)
		}
	}

	clients, err := store.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("Expected 2 clients, got %d", len(clients))
	}
	if clients[0].Name != "Anne" || clients[1].Name != "Bram" {
		t.Errorf("Unexpected order: %+v", clients)
	}
}

func TestCreateClientValidation(t *testing.T) {
	store := createTestStorage(t)

	if err := store.CreateClient(context.Background(), &model.Client{}); err == nil {
		t.Error("Expected error for client without name")
	}
	if err := store.CreateClient(context.Background(), nil); err == nil {
		t.Error("Expected error for nil client")
	}
}

func TestCreateAndGetSearchRequest(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	client := createTestClient(t, store)

	req := &model.SearchRequest{
		ClientID:           client.ID,
		CornerSide:         model.CornerRight,
		TextQuery:          "hoekbank leer",
		IncludeKeywordsCSV: "beige,leer",
		ExcludeKeywordsCSV: "kunstleer",
		Budget:             intp(750),
		MaxDistanceKM:      intp(30),
		IsActive:           true,
	}
	if err := store.CreateSearchRequest(ctx, req); err != nil {
		t.Fatalf("CreateSearchRequest failed: %v", err)
	}
	if req.ID == 0 {
		t.Error("Expected search request ID to be set")
	}

	got, err := store.GetSearchRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetSearchRequest failed: %v", err)
	}
	if got.CornerSide != model.CornerRight {
		t.Errorf("Expected corner side right, got %s", got.CornerSide)
	}
	if got.TextQuery != "hoekbank leer" {
		t.Errorf("Unexpected text query: %q", got.TextQuery)
	}
	if got.Budget == nil || *got.Budget != 750 {
		t.Errorf("Unexpected budget: %v", got.Budget)
	}
	if got.MaxDistanceKM == nil || *got.MaxDistanceKM != 30 {
		t.Errorf("Unexpected max distance: %v", got.MaxDistanceKM)
	}
	if !got.IsActive {
		t.Error("Expected request to be active")
	}
}

func TestListActiveSearchRequests(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	client := createTestClient(t, store)

	active := createTestSearchRequest(t, store, client.ID)
	paused := createTestSearchRequest(t, store, client.ID)

	if err := store.SetSearchRequestActive(ctx, paused.ID, false); err != nil {
		t.Fatalf("SetSearchRequestActive failed: %v", err)
	}

	requests, err := store.ListActiveSearchRequests(ctx)
	if err != nil {
		t.Fatalf("ListActiveSearchRequests failed: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("Expected 1 active request, got %d", len(requests))
	}
	if requests[0].ID != active.ID {
		t.Errorf("Expected request %d, got %d", active.ID, requests[0].ID)
	}

	all, err := store.ListSearchRequests(ctx)
	if err != nil {
		t.Fatalf("ListSearchRequests failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 requests, got %d", len(all))
	}
}

func TestDuplicateInsertMapsToDuplicateEntry(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	client := createTestClient(t, store)
	req := createTestSearchRequest(t, store, client.ID)

	// Insert the same (search_request_id, ad_id) pair twice, the way a
	// second process would between another writer's lookup and insert.
	insert := `
		INSERT INTO match_results (search_request_id, ad_id, match_percent, status, forwarded, created_at)
		VALUES (?, ?, 80, 'new', 0, CURRENT_TIMESTAMP)`
	if _, err := store.db.ExecContext(ctx, insert, req.ID, "a1"); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	_, err := store.db.ExecContext(ctx, insert, req.ID, "a1")
	if err == nil {
		t.Fatal("Expected unique index violation")
	}

	if !errors.Is(mapConstraintError(err), common.ErrDuplicateEntry) {
		t.Errorf("Expected ErrDuplicateEntry, got %v", mapConstraintError(err))
	}
}

func TestMapConstraintErrorPassesOtherErrorsThrough(t *testing.T) {
	plain := errors.New("disk I/O error")
	if got := mapConstraintError(plain); got != plain {
		t.Errorf("Expected error unchanged, got %v", got)
	}
	if mapConstraintError(nil) != nil {
		t.Error("Expected nil to stay nil")
	}
}

func TestSetSearchRequestActiveNotFound(t *testing.T) {
	store := createTestStorage(t)

	err := store.SetSearchRequestActive(context.Background(), 999, false)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
