package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"pharmachat/models"
	"pharmachat/services/resolver"
	"pharmachat/services/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessions keeps session contexts in memory, cloning through JSON so the
// stored blob behaves like the Redis one.
type fakeSessions struct {
	store map[string]*models.SessionContext
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{store: make(map[string]*models.SessionContext)}
}

func (f *fakeSessions) Load(_ context.Context, sessionID string) (*models.SessionContext, error) {
	stored, ok := f.store[sessionID]
	if !ok {
		return &models.SessionContext{SessionID: sessionID}, nil
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	var sess models.SessionContext
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (f *fakeSessions) Save(_ context.Context, sessionID string, sess *models.SessionContext) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	var clone models.SessionContext
	if err := json.Unmarshal(b, &clone); err != nil {
		return err
	}
	f.store[sessionID] = &clone
	return nil
}

func (f *fakeSessions) Clear(_ context.Context, sessionID string) error {
	delete(f.store, sessionID)
	return nil
}

type fakeCatalog struct {
	candidates []models.CatalogCandidate
	failLive   bool
}

func (f *fakeCatalog) GetByID(id string) (*models.Product, error) { return nil, nil }

func (f *fakeCatalog) Search(query string) ([]models.CatalogCandidate, error) {
	q := strings.ToLower(query)
	var out []models.CatalogCandidate
	for _, c := range f.candidates {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) All() ([]models.CatalogCandidate, error) { return f.candidates, nil }

func (f *fakeCatalog) GetLive(ids []string) ([]models.LiveProductInfo, error) {
	if f.failLive {
		return nil, errors.New("mongo unavailable")
	}
	var out []models.LiveProductInfo
	for _, c := range f.candidates {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, models.LiveProductInfo{ID: c.ID, Price: c.Price, Stock: c.Stock, Status: c.Status})
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetAllFull() ([]models.Product, error)   { return nil, nil }
func (f *fakeCatalog) UpdateEmbedding(string, []float32) error { return nil }

type fakeOrders struct {
	created []*models.Order
	fail    bool
}

func (f *fakeOrders) Create(order *models.Order) error {
	if f.fail {
		return errors.New("mongo unavailable")
	}
	f.created = append(f.created, order)
	return nil
}

func (f *fakeOrders) GetByID(id string) (*models.Order, error)       { return nil, nil }
func (f *fakeOrders) GetBySession(id string) ([]models.Order, error) { return nil, nil }

type fixedEmbedder struct {
	vectors map[string][]float32
}

func (f *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[strings.ToLower(text)]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

// failingEmbedder simulates an embedding backend outage.
type failingEmbedder struct{}

func (failingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("embedding backend unavailable")
}

type fakeGenerator struct {
	reply string
	err   error
}

func (f *fakeGenerator) GenerateReply(_ context.Context, _ []models.ChatMessage, _ string) (string, error) {
	return f.reply, f.err
}

func testCandidates() []models.CatalogCandidate {
	return []models.CatalogCandidate{
		{ID: "p1", Name: "Panadol 500mg", Company: "GSK", PackSize: "200s", Category: "medicine", Price: 250, Stock: 100, Status: "active"},
		{ID: "p2", Name: "Panadol Extra", Company: "GSK", PackSize: "100s", Category: "medicine", Price: 300, Stock: 50, Status: "active"},
		{ID: "p3", Name: "Brufen 400mg", Company: "Abbott", PackSize: "30s", Category: "medicine", Price: 120, Stock: 30, Status: "active"},
		{ID: "p4", Name: "Disprin", Company: "RB", PackSize: "100s", Category: "medicine", Price: 90, Stock: 0, Status: "out_of_stock"},
	}
}

type fixture struct {
	svc      *DefaultChatService
	sessions *fakeSessions
	orders   *fakeOrders
	catalog  *fakeCatalog
}

func newFixture() *fixture {
	catalog := &fakeCatalog{candidates: testCandidates()}
	engine := retrieval.NewEngine(&fixedEmbedder{})
	sessions := newFakeSessions()
	orders := &fakeOrders{}
	return &fixture{
		svc: &DefaultChatService{
			Sessions: sessions,
			Catalog:  catalog,
			Orders:   orders,
			Resolver: resolver.NewResolver(catalog, engine),
			Engine:   engine,
			Reranker: retrieval.NewReranker(nil),
		},
		sessions: sessions,
		orders:   orders,
		catalog:  catalog,
	}
}

func (f *fixture) turn(t *testing.T, text string) *models.ChatResponse {
	t.Helper()
	resp, err := f.svc.ProcessTurn(context.Background(), models.ChatRequest{SessionID: "s1", Text: text})
	require.NoError(t, err)
	require.NotNil(t, resp)
	return resp
}

func (f *fixture) session() *models.SessionContext {
	return f.sessions.store["s1"]
}

func TestAddSingleItem(t *testing.T) {
	f := newFixture()

	resp := f.turn(t, "add 2 brufen")
	assert.Equal(t, models.ResponseMessage, resp.Kind)
	assert.Contains(t, resp.Text, "Added 2 x Brufen 400mg")

	sess := f.session()
	require.Len(t, sess.Cart, 1)
	assert.Equal(t, "p3", sess.Cart[0].ProductID)
	assert.Equal(t, 2, sess.Cart[0].Quantity)
}

func TestAddMultipleItemsOneTurn(t *testing.T) {
	f := newFixture()

	resp := f.turn(t, "add 3 panadol extra and 2 brufen")
	assert.Contains(t, resp.Text, "Added 3 x Panadol Extra")
	assert.Contains(t, resp.Text, "Added 2 x Brufen 400mg")

	sess := f.session()
	require.Len(t, sess.Cart, 2)
}

func TestFailedResolutionLeavesCartUntouched(t *testing.T) {
	f := newFixture()
	f.svc.Engine = retrieval.NewEngine(failingEmbedder{})
	f.svc.Resolver = resolver.NewResolver(f.catalog, f.svc.Engine)

	// The first segment resolves by substring, the second falls through to
	// the semantic tier and hits the embedding outage. Neither segment may
	// reach the saved cart.
	resp := f.turn(t, "add 2 brufen and 2 zzzobscure")
	assert.Equal(t, msgApology, resp.Text)
	assert.Empty(t, f.session().Cart)
}

func TestAddMergesExistingLine(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 2 brufen")
	f.turn(t, "add 3 brufen")

	sess := f.session()
	require.Len(t, sess.Cart, 1)
	assert.Equal(t, 5, sess.Cart[0].Quantity)
}

func TestAddOutOfStock(t *testing.T) {
	f := newFixture()

	resp := f.turn(t, "add 2 disprin")
	assert.Contains(t, resp.Text, "out of stock")
	assert.Empty(t, f.session().Cart)
}

func TestAddUnknownProduct(t *testing.T) {
	f := newFixture()

	resp := f.turn(t, "add 2 floopamol")
	assert.Contains(t, resp.Text, "couldn't find anything matching")
	assert.Empty(t, f.session().Cart)
}

func TestAmbiguityRoundTrip(t *testing.T) {
	f := newFixture()

	resp := f.turn(t, "add 2 panadol")
	assert.Contains(t, resp.Text, "Which one did you mean?")
	require.NotNil(t, f.session().Pending)
	assert.Equal(t, models.PendingAmbiguity, f.session().Pending.Kind)

	resp = f.turn(t, "2")
	assert.Contains(t, resp.Text, "Added 2 x Panadol Extra")
	assert.Nil(t, f.session().Pending)
	require.Len(t, f.session().Cart, 1)
	assert.Equal(t, "p2", f.session().Cart[0].ProductID)
}

func TestAmbiguitySelectionByName(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 2 panadol")
	resp := f.turn(t, "panadol extra")
	assert.Contains(t, resp.Text, "Added 2 x Panadol Extra")
}

func TestAmbiguityDeclined(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 2 panadol")
	resp := f.turn(t, "no, forget it")
	assert.Contains(t, resp.Text, "dropped")
	assert.Nil(t, f.session().Pending)
	assert.Empty(t, f.session().Cart)
}

func TestAmbiguityGibberishReprompts(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 2 panadol")
	resp := f.turn(t, "hmm not sure what that means")
	assert.Contains(t, resp.Text, "Which one did you mean?")
	require.NotNil(t, f.session().Pending)
}

func TestNewOrderOverridesPending(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 2 panadol")
	require.NotNil(t, f.session().Pending)

	resp := f.turn(t, "add 4 brufen")
	assert.Contains(t, resp.Text, "Added 4 x Brufen 400mg")
	require.Len(t, f.session().Cart, 1)
	assert.Equal(t, "p3", f.session().Cart[0].ProductID)
}

func TestStockNegotiationAccepted(t *testing.T) {
	f := newFixture()

	resp := f.turn(t, "add 50 brufen")
	assert.Contains(t, resp.Text, "We only have 30 of Brufen 400mg in stock (you asked for 50)")
	require.NotNil(t, f.session().Pending)
	assert.Equal(t, models.PendingStockNegotiation, f.session().Pending.Kind)
	assert.Empty(t, f.session().Cart)

	resp = f.turn(t, "yes please")
	assert.Contains(t, resp.Text, "added 30 x Brufen 400mg")
	require.Len(t, f.session().Cart, 1)
	assert.Equal(t, 30, f.session().Cart[0].Quantity)
	assert.Nil(t, f.session().Pending)
}

func TestStockNegotiationDeclined(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 50 brufen")
	resp := f.turn(t, "no thanks")
	assert.Contains(t, resp.Text, "left Brufen 400mg out")
	assert.Empty(t, f.session().Cart)
	assert.Nil(t, f.session().Pending)
}

func TestStockNegotiationCountsCartContents(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 25 brufen")
	resp := f.turn(t, "add 10 brufen")
	// 25 already in the cart, 30 in stock, so only 5 more can be offered.
	assert.Contains(t, resp.Text, "Should I add the 5 we have?")
}

func TestAwaitingQuantityRoundTrip(t *testing.T) {
	f := newFixture()

	resp := f.turn(t, "add panadol 500mg")
	assert.Contains(t, resp.Text, "How many of Panadol 500mg")
	require.NotNil(t, f.session().Pending)
	assert.Equal(t, models.PendingAwaitingQuantity, f.session().Pending.Kind)

	resp = f.turn(t, "5")
	assert.Contains(t, resp.Text, "Added 5 x Panadol 500mg")
	require.Len(t, f.session().Cart, 1)
	assert.Equal(t, 5, f.session().Cart[0].Quantity)
}

func TestShowCart(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 2 brufen")
	resp := f.turn(t, "show my cart")
	assert.Contains(t, resp.Text, "Brufen 400mg")
	assert.Contains(t, resp.Text, "Total: Rs. 240.00")
}

func TestClearCart(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 2 brufen")
	resp := f.turn(t, "clear my cart")
	assert.Equal(t, msgCartCleared, resp.Text)
	assert.Empty(t, f.session().Cart)
}

func TestRemoveItem(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 2 brufen and 3 panadol extra")
	resp := f.turn(t, "remove brufen from my cart")
	assert.Contains(t, resp.Text, "Removed Brufen 400mg")
	require.Len(t, f.session().Cart, 1)
	assert.Equal(t, "p2", f.session().Cart[0].ProductID)
}

func TestUpdateQuantity(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 2 brufen")
	resp := f.turn(t, "change brufen to 5")
	assert.Contains(t, resp.Text, "Updated Brufen 400mg to quantity 5")
	assert.Equal(t, 5, f.session().Cart[0].Quantity)
}

func TestUpdateQuantityBeyondStock(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 2 brufen")
	resp := f.turn(t, "change brufen to 500")
	assert.Contains(t, resp.Text, "We only have 30 of Brufen 400mg in stock")
	assert.Equal(t, 2, f.session().Cart[0].Quantity)
}

func TestDirectLookup(t *testing.T) {
	f := newFixture()

	resp := f.turn(t, "what is the price of brufen?")
	assert.Contains(t, resp.Text, "Brufen 400mg (30s) by Abbott is Rs. 120.00, with 30 in stock.")
}

func TestDirectLookupOutOfStock(t *testing.T) {
	f := newFixture()

	resp := f.turn(t, "is disprin available?")
	assert.Contains(t, resp.Text, "currently out of stock")
}

func TestProceduralAnsweredFromFAQ(t *testing.T) {
	f := newFixture()
	embedder := &fixedEmbedder{vectors: map[string][]float32{
		"how do i pay an invoice": {1, 0, 0},
	}}
	f.svc.Engine = retrieval.NewEngine(embedder)
	f.svc.Engine.Reload([]retrieval.Entry{
		{ID: "f1", Kind: retrieval.KindFAQ, Topic: "payment", Answer: "We accept cash on delivery and bank transfer.", Vector: retrieval.Normalize([]float32{1, 0, 0})},
	})
	f.svc.Resolver = resolver.NewResolver(f.catalog, f.svc.Engine)

	resp := f.turn(t, "how do I pay an invoice")
	assert.Equal(t, "We accept cash on delivery and bank transfer.", resp.Text)
}

func TestOpenQuestionFallsBackToGenerator(t *testing.T) {
	f := newFixture()
	f.svc.Generator = &fakeGenerator{reply: "Hello! How can I help you today?"}

	resp := f.turn(t, "hello there")
	assert.Equal(t, "Hello! How can I help you today?", resp.Text)
}

func TestOpenQuestionWithoutGenerator(t *testing.T) {
	f := newFixture()

	resp := f.turn(t, "hello there")
	assert.Contains(t, resp.Text, "I can help you order products")
}

func TestGeneratorFailureApologizes(t *testing.T) {
	f := newFixture()
	f.svc.Generator = &fakeGenerator{err: errors.New("upstream timeout")}

	resp := f.turn(t, "hello there")
	assert.Equal(t, msgApology, resp.Text)
}

func TestHistoryRecordedAndBounded(t *testing.T) {
	f := newFixture()

	f.turn(t, "add 2 brufen")
	sess := f.session()
	require.Len(t, sess.History, 2)
	assert.Equal(t, "user", sess.History[0].Role)
	assert.Equal(t, "assistant", sess.History[1].Role)

	for i := 0; i < models.MaxHistoryMessages; i++ {
		f.turn(t, "show my cart")
	}
	assert.Len(t, f.session().History, models.MaxHistoryMessages)
}
