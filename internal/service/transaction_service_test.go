package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tally/internal/amqp"
	"tally/internal/core"
	applog "tally/internal/log"
)

type fakeTransactionStore struct {
	txs map[uuid.UUID]core.Transaction
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{txs: make(map[uuid.UUID]core.Transaction)}
}

func (f *fakeTransactionStore) InsertTransaction(_ context.Context, t core.Transaction) error {
	f.txs[t.ID] = t
	return nil
}

func (f *fakeTransactionStore) FindTransaction(_ context.Context, id uuid.UUID) (*core.Transaction, error) {
	t, ok := f.txs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTransactionStore) ListTransactionsByOwner(_ context.Context, ownerID uuid.UUID) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.txs {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}

func (f *fakeTransactionStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if _, ok := f.txs[t.ID]; !ok {
		return core.ErrNotFound
	}
	f.txs[t.ID] = t
	return nil
}

func (f *fakeTransactionStore) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	if _, ok := f.txs[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.txs, id)
	return nil
}

type recordingPublisher struct {
	events []*amqp.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishTransactionEvent(_ context.Context, event *amqp.TransactionEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newTestService(t *testing.T) (*TransactionService, *fakeTransactionStore, *recordingPublisher) {
	t.Helper()
	store := newFakeTransactionStore()
	publisher := &recordingPublisher{}
	logger := applog.New(applog.DefaultConfig())
	return NewTransactionService(store, publisher, logger), store, publisher
}

func validCreateInput() CreateInput {
	return CreateInput{
		Kind:       core.KindExpense,
		Amount:     decimal.RequireFromString("42.50"),
		Category:   "Food & Dining",
		OccurredAt: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateThenList(t *testing.T) {
	svc, _, publisher := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, validCreateInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("created transaction has no id")
	}
	if created.OwnerID != owner {
		t.Errorf("owner = %v, want %v", created.OwnerID, owner)
	}

	listed, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("list = %+v, want the created transaction", listed)
	}

	if len(publisher.events) != 1 || publisher.events[0].Action != amqp.ActionCreated {
		t.Errorf("events = %+v, want one created event", publisher.events)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, publisher := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		wantKey string
	}{
		{"zero amount", func(in *CreateInput) { in.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(in *CreateInput) { in.Amount = decimal.RequireFromString("-5") }, "amount"},
		{"bad kind", func(in *CreateInput) { in.Kind = "transfer" }, "kind"},
		{"blank category", func(in *CreateInput) { in.Category = "   " }, "category"},
		{"zero date", func(in *CreateInput) { in.OccurredAt = time.Time{} }, "occurredAt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			tt.mutate(&in)
			_, err := svc.Create(ctx, owner, in)
			verr, ok := core.AsValidationError(err)
			if !ok {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if _, present := verr.Fields[tt.wantKey]; !present {
				t.Errorf("fields = %v, want %q flagged", verr.Fields, tt.wantKey)
			}
		})
	}

	if len(publisher.events) != 0 {
		t.Errorf("rejected creates published events: %+v", publisher.events)
	}
}

func TestUpdatePartialPatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, CreateInput{
		Kind:        core.KindExpense,
		Amount:      decimal.RequireFromString("10"),
		Category:    "Food & Dining",
		Description: "groceries",
		OccurredAt:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newAmount := decimal.RequireFromString("25")
	updated, err := svc.Update(ctx, owner, created.ID, UpdateInput{Amount: &newAmount})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.Amount.Equal(newAmount) {
		t.Errorf("amount = %s, want 25", updated.Amount)
	}
	if updated.Category != "Food & Dining" || updated.Description != "groceries" {
		t.Errorf("omitted fields changed: %+v", updated)
	}

	// An explicit empty description is an update, not an omission.
	empty := ""
	updated, err = svc.Update(ctx, owner, created.ID, UpdateInput{Description: &empty})
	if err != nil {
		t.Fatalf("Update with empty description: %v", err)
	}
	if updated.Description != "" {
		t.Errorf("description = %q, want empty", updated.Description)
	}

	// An explicit zero amount is an update and must be rejected.
	zero := decimal.Zero
	_, err = svc.Update(ctx, owner, created.ID, UpdateInput{Amount: &zero})
	if _, ok := core.AsValidationError(err); !ok {
		t.Errorf("zero amount patch: got %v, want ValidationError", err)
	}
}

func TestUpdateGuards(t *testing.T) {
	svc, _, publisher := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	created, err := svc.Create(ctx, owner, validCreateInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	publisher.events = nil

	newAmount := decimal.RequireFromString("99")

	if _, err := svc.Update(ctx, owner, uuid.New(), UpdateInput{Amount: &newAmount}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, stranger, created.ID, UpdateInput{Amount: &newAmount}); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("foreign caller: got %v, want ErrForbidden", err)
	}
	if len(publisher.events) != 0 {
		t.Errorf("guarded updates published events: %+v", publisher.events)
	}

	got, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !got[0].Amount.Equal(created.Amount) {
		t.Errorf("guarded update mutated the record: %+v", got[0])
	}
}

func TestDelete(t *testing.T) {
	svc, _, publisher := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	created, err := svc.Create(ctx, owner, validCreateInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, owner, uuid.New()); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown id: got %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, stranger, created.ID); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("foreign caller: got %v, want ErrForbidden", err)
	}

	if err := svc.Delete(ctx, owner, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	listed, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("list after delete = %+v, want empty", listed)
	}

	last := publisher.events[len(publisher.events)-1]
	if last.Action != amqp.ActionDeleted || last.TransactionID != created.ID {
		t.Errorf("last event = %+v, want deleted event for %v", last, created.ID)
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	svc, _, publisher := newTestService(t)
	publisher.err = errors.New("broker down")
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, validCreateInput())
	if err != nil {
		t.Fatalf("Create with failing publisher: %v", err)
	}
	listed, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("transaction missing after publish failure: %+v", listed)
	}
}

func TestSummaryAndCharts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()

	seed := []struct {
		ownerID uuid.UUID
		kind    core.Kind
		amount  string
		month   time.Month
	}{
		{owner, core.KindIncome, "1000", time.January},
		{owner, core.KindExpense, "200", time.January},
		{owner, core.KindExpense, "300", time.February},
		{other, core.KindExpense, "5000", time.February},
	}
	for _, s := range seed {
		_, err := svc.Create(ctx, s.ownerID, CreateInput{
			Kind:       s.kind,
			Amount:     decimal.RequireFromString(s.amount),
			Category:   "Food & Dining",
			OccurredAt: time.Date(2024, s.month, 10, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	summary, err := svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !summary.TotalIncome.Equal(decimal.RequireFromString("1000")) ||
		!summary.TotalExpense.Equal(decimal.RequireFromString("500")) ||
		!summary.Balance.Equal(decimal.RequireFromString("500")) {
		t.Errorf("summary = %+v, want 1000/500/500", summary)
	}

	totals, err := svc.CategoryBreakdown(ctx, owner)
	if err != nil {
		t.Fatalf("CategoryBreakdown: %v", err)
	}
	if len(totals) != 1 || !totals[0].Total.Equal(decimal.RequireFromString("500")) {
		t.Errorf("totals = %+v, want Food & Dining = 500", totals)
	}

	series, err := svc.MonthlySeries(ctx, owner)
	if err != nil {
		t.Fatalf("MonthlySeries: %v", err)
	}
	if len(series) != 2 || series[0].Label != "Jan 2024" || series[1].Label != "Feb 2024" {
		t.Errorf("series = %+v, want Jan 2024 and Feb 2024", series)
	}
}
