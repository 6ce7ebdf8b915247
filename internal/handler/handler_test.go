package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/catalog"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/config"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/handler"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/ledger"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/model"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/repository"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/router"
)

const defaultSlot = "9:00 AM - 9:30 AM"

func newTestServer(t *testing.T, cat *catalog.Catalog) (*echo.Echo, *repository.MemoryStore) {
	return newTestServerWithRedis(t, cat, nil)
}

func newTestServerWithRedis(t *testing.T, cat *catalog.Catalog, rdb *redis.Client) (*echo.Echo, *repository.MemoryStore) {
	t.Helper()
	if cat == nil {
		cat = catalog.New(nil, 100, 10)
	}
	store := repository.NewMemoryStore(cat)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	cfg := config.Config{
		Env:             "test",
		JWTSecret:       "test-secret",
		AccessTTLMin:    15,
		RefreshTTLDays:  7,
		BcryptCost:      4,
		BookingFee:      decimal.NewFromInt(1),
		StartingBalance: decimal.NewFromInt(30),
		SeatLockWait:    2 * time.Second,
	}
	led := ledger.New(store, cat, cfg.BookingFee, cfg.SeatLockWait, nil, log)

	e := echo.New()
	router.Register(e, cfg, router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, store, store),
		Seats:       handler.NewSeatsHandler(led, cat),
		Reservation: handler.NewReservationHandler(led),
		Approver:    handler.NewApproverHandler(store),
	}, rdb)
	return e, store
}

func doJSON(e *echo.Echo, method, path, body, bearer string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func seedMember(t *testing.T, store *repository.MemoryStore, email string, balance int64) {
	t.Helper()
	_, err := store.Create(context.Background(), email, strings.Split(email, "@")[0], "password123", model.RoleMember, nil, 4, decimal.NewFromInt(balance))
	if err != nil {
		t.Fatalf("seed %s: %v", email, err)
	}
}

func TestGridShape(t *testing.T) {
	e, _ := newTestServer(t, catalog.New([]string{"lunch"}, 25, 10))

	rec := doJSON(e, http.MethodGet, "/seats?slot=lunch", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var grid [][]struct {
		SeatNumber uint32 `json:"seat_number"`
		IsBooked   bool   `json:"is_booked"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &grid); err != nil {
		t.Fatalf("decode grid: %v", err)
	}
	if len(grid) != 3 {
		t.Fatalf("25 seats in rows of 10 should give 3 rows, got %d", len(grid))
	}
	if len(grid[0]) != 10 || len(grid[1]) != 10 || len(grid[2]) != 5 {
		t.Fatalf("unexpected row widths: %d/%d/%d", len(grid[0]), len(grid[1]), len(grid[2]))
	}
	if grid[2][4].SeatNumber != 25 {
		t.Fatalf("last cell should be seat 25, got %d", grid[2][4].SeatNumber)
	}
	for _, row := range grid {
		for _, cell := range row {
			if cell.IsBooked {
				t.Fatalf("fresh slot must be entirely free, seat %d booked", cell.SeatNumber)
			}
		}
	}
}

func TestGridErrors(t *testing.T) {
	e, _ := newTestServer(t, nil)

	if rec := doJSON(e, http.MethodGet, "/seats", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing slot param should be 400, got %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodGet, "/seats?slot=midnight", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown slot should be 404, got %d", rec.Code)
	}
}

func TestSlotsListing(t *testing.T) {
	e, _ := newTestServer(t, nil)
	rec := doJSON(e, http.MethodGet, "/slots", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Slots []string `json:"slots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Slots) != 18 || body.Slots[0] != defaultSlot {
		t.Fatalf("unexpected slots: %v", body.Slots)
	}
}

func TestBookingScenario(t *testing.T) {
	e, store := newTestServer(t, nil)
	seedMember(t, store, "alice@example.com", 30)
	seedMember(t, store, "bob@example.com", 30)

	body := func(email string, seat int) string {
		return fmt.Sprintf(`{"account_identity":%q,"seat_number":%d,"slot":%q}`, email, seat, defaultSlot)
	}

	// Alice books seat 12.
	rec := doJSON(e, http.MethodPost, "/book_seat", body("alice@example.com", 12), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("book: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var booked struct {
		Message    string `json:"message"`
		Balance    string `json:"balance"`
		BookingRef string `json:"booking_ref"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &booked); err != nil {
		t.Fatalf("decode book: %v", err)
	}
	if booked.Balance != "29" {
		t.Fatalf("expected balance 29, got %q", booked.Balance)
	}
	if booked.BookingRef == "" {
		t.Fatal("expected a booking ref")
	}
	if !strings.Contains(booked.Message, "Seat 12 booked successfully") {
		t.Fatalf("unexpected message: %q", booked.Message)
	}

	// The grid shows the seat as taken.
	rec = doJSON(e, http.MethodGet, "/seats?slot="+strings.ReplaceAll(defaultSlot, " ", "%20"), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("grid: expected 200, got %d", rec.Code)
	}
	var grid [][]struct {
		SeatNumber uint32 `json:"seat_number"`
		IsBooked   bool   `json:"is_booked"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &grid); err != nil {
		t.Fatalf("decode grid: %v", err)
	}
	if !grid[1][1].IsBooked {
		t.Fatal("seat 12 should show booked in the grid")
	}

	// Bob cannot take the same seat, and keeps his balance.
	if rec = doJSON(e, http.MethodPost, "/book_seat", body("bob@example.com", 12), ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("double book: expected 400, got %d", rec.Code)
	}

	// Bob cannot cancel Alice's seat.
	if rec = doJSON(e, http.MethodPost, "/cancel_seat", body("bob@example.com", 12), ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("foreign cancel: expected 400, got %d", rec.Code)
	}

	// Alice cancels and gets the fee back.
	rec = doJSON(e, http.MethodPost, "/cancel_seat", body("alice@example.com", 12), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var cancelled struct {
		Message string `json:"message"`
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cancelled); err != nil {
		t.Fatalf("decode cancel: %v", err)
	}
	if cancelled.Balance != "30" {
		t.Fatalf("expected balance 30 after cancel, got %q", cancelled.Balance)
	}

	// Cancelling again fails: the seat is free.
	if rec = doJSON(e, http.MethodPost, "/cancel_seat", body("alice@example.com", 12), ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("cancel free seat: expected 400, got %d", rec.Code)
	}
}

func TestSeatGridBypassesResponseCache(t *testing.T) {
	// A client pointed at a dead address keeps the cache middleware active
	// (it stamps X-Cache on every route it fronts) without needing a live
	// server; every Redis call simply errors and falls through.
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	e, store := newTestServerWithRedis(t, nil, rdb)
	seedMember(t, store, "alice@example.com", 30)

	// The slot listing is immutable and sits behind the cache.
	rec := doJSON(e, http.MethodGet, "/slots", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("slots: expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Cache") == "" {
		t.Fatal("slot listing should be served through the response cache")
	}

	// The grid is not: a booking must be visible on the very next read.
	rec = doJSON(e, http.MethodPost, "/book_seat",
		fmt.Sprintf(`{"account_identity":"alice@example.com","seat_number":1,"slot":%q}`, defaultSlot), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("book: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	rec = doJSON(e, http.MethodGet, "/seats?slot="+strings.ReplaceAll(defaultSlot, " ", "%20"), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("grid: expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Cache") != "" {
		t.Fatal("seat grid must not pass through the response cache")
	}
	var grid [][]struct {
		SeatNumber uint32 `json:"seat_number"`
		IsBooked   bool   `json:"is_booked"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &grid); err != nil {
		t.Fatalf("decode grid: %v", err)
	}
	if !grid[0][0].IsBooked {
		t.Fatal("grid must show the committed booking immediately")
	}
}

func TestBookingValidation(t *testing.T) {
	e, store := newTestServer(t, nil)
	seedMember(t, store, "alice@example.com", 30)

	cases := []struct {
		name string
		body string
	}{
		{"missing identity", fmt.Sprintf(`{"seat_number":1,"slot":%q}`, defaultSlot)},
		{"missing seat", fmt.Sprintf(`{"account_identity":"alice@example.com","slot":%q}`, defaultSlot)},
		{"missing slot", `{"account_identity":"alice@example.com","seat_number":1}`},
		{"bad identity", fmt.Sprintf(`{"account_identity":"not-an-email","seat_number":1,"slot":%q}`, defaultSlot)},
	}
	for _, tc := range cases {
		if rec := doJSON(e, http.MethodPost, "/book_seat", tc.body, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}

	// Unknown account is a 400, not a 404: the endpoint is public and must
	// not confirm which emails exist via status code alone.
	rec := doJSON(e, http.MethodPost, "/book_seat",
		fmt.Sprintf(`{"account_identity":"ghost@example.com","seat_number":1,"slot":%q}`, defaultSlot), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown account: expected 400, got %d", rec.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	e, _ := newTestServer(t, nil)

	rec := doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"email":"new@example.com","username":"newbie","password":"password123"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var auth struct {
		Account struct {
			Email   string `json:"email"`
			Role    string `json:"role"`
			Balance string `json:"balance"`
		} `json:"account"`
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
		Refresh struct {
			Token string `json:"token"`
		} `json:"refresh"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &auth); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	if auth.Account.Role != model.RoleMember {
		t.Fatalf("default role should be MEMBER, got %q", auth.Account.Role)
	}
	if auth.Account.Balance != "30.00" {
		t.Fatalf("new account should start at 30.00, got %q", auth.Account.Balance)
	}

	// Duplicate email conflicts.
	if rec = doJSON(e, http.MethodPost, "/v1/auth/register",
		`{"email":"new@example.com","username":"again","password":"password123"}`, ""); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rec.Code)
	}

	// The access token opens /v1/me.
	rec = doJSON(e, http.MethodGet, "/v1/me", "", auth.Access.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if rec = doJSON(e, http.MethodGet, "/v1/me", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: expected 401, got %d", rec.Code)
	}

	// Refresh rotates: the new pair works, the old refresh token does not.
	rec = doJSON(e, http.MethodPost, "/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, auth.Refresh.Token), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if rec = doJSON(e, http.MethodPost, "/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, auth.Refresh.Token), ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh token: expected 401, got %d", rec.Code)
	}

	// Wrong password rejected.
	if rec = doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"new@example.com","password":"wrong-password"}`, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}
	if rec = doJSON(e, http.MethodPost, "/v1/auth/login",
		`{"email":"new@example.com","password":"password123"}`, ""); rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
}

func TestApproverSurface(t *testing.T) {
	e, store := newTestServer(t, nil)
	ctx := context.Background()

	approver := "boss@example.com"
	if _, err := store.Create(ctx, approver, "boss", "password123", model.RoleApprover, nil, 4, decimal.Zero); err != nil {
		t.Fatalf("create approver: %v", err)
	}
	if _, err := store.Create(ctx, "worker@example.com", "worker", "password123", model.RoleMember, &approver, 4, decimal.NewFromInt(5)); err != nil {
		t.Fatalf("create member: %v", err)
	}

	login := func(email string) string {
		rec := doJSON(e, http.MethodPost, "/v1/auth/login",
			fmt.Sprintf(`{"email":%q,"password":"password123"}`, email), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("login %s: %d: %s", email, rec.Code, rec.Body)
		}
		var out struct {
			Access struct {
				Token string `json:"token"`
			} `json:"access"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode login: %v", err)
		}
		return out.Access.Token
	}
	bossToken := login(approver)
	workerToken := login("worker@example.com")

	// Members are visible to the approver only.
	rec := doJSON(e, http.MethodGet, "/v1/approver/members", "", bossToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("members: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var members struct {
		Members []struct {
			Email   string `json:"email"`
			Balance string `json:"balance"`
		} `json:"members"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members.Members) != 1 || members.Members[0].Email != "worker@example.com" {
		t.Fatalf("unexpected members: %+v", members.Members)
	}
	if rec = doJSON(e, http.MethodGet, "/v1/approver/members", "", workerToken); rec.Code != http.StatusForbidden {
		t.Fatalf("member hitting approver surface: expected 403, got %d", rec.Code)
	}

	// Top-up credits the backed member.
	rec = doJSON(e, http.MethodPost, "/v1/approver/topup",
		`{"member_identity":"worker@example.com","amount":10}`, bossToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("topup: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	worker, _ := store.GetByEmail(ctx, "worker@example.com")
	if !worker.Balance.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected balance 15 after topup, got %s", worker.Balance)
	}

	// Non-positive amounts rejected.
	if rec = doJSON(e, http.MethodPost, "/v1/approver/topup",
		`{"member_identity":"worker@example.com","amount":-3}`, bossToken); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative topup: expected 400, got %d", rec.Code)
	}
}
