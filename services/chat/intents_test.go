package chat

import (
	"testing"

	"pharmachat/models"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	empty := &models.SessionContext{}
	pendingSess := &models.SessionContext{Pending: &models.PendingOrder{Kind: models.PendingAmbiguity}}
	checkoutSess := &models.SessionContext{CheckoutState: models.CheckoutCollectPhone}
	addressSess := &models.SessionContext{CheckoutState: models.CheckoutCollectAddress}

	tests := []struct {
		name string
		text string
		sess *models.SessionContext
		want Intent
	}{
		{"quantified add", "add 5 panadol", empty, IntentCartMutation},
		{"quantity shorthand", "5 panadol", empty, IntentCartMutation},
		{"number word", "add five panadol", empty, IntentCartMutation},
		{"unit word", "order two packs of brufen", empty, IntentCartMutation},
		{"show cart", "show my cart", empty, IntentCartMutation},
		{"clear cart", "clear the cart", empty, IntentCartMutation},
		{"checkout keyword", "place my order", empty, IntentCartMutation},
		{"bare verb without signal", "add it", empty, IntentUnclassified},

		{"procedural forward", "how do I place an order?", empty, IntentProcedural},
		{"procedural payment", "how can I pay", empty, IntentProcedural},
		{"procedural typo", "how do i ordder", empty, IntentProcedural},
		{"procedural reverse", "delivery how does it work", empty, IntentProcedural},

		{"price lookup", "what is the price of panadol", empty, IntentDirectLookup},
		{"stock lookup", "is brufen available", empty, IntentDirectLookup},

		{"pending claims turn", "the second one", pendingSess, IntentPendingFollowUp},
		{"pending bare yes", "yes", pendingSess, IntentPendingFollowUp},
		{"new order overrides pending", "add 3 brufen", pendingSess, IntentCartMutation},

		{"checkout answer", "0300 1234567", checkoutSess, IntentCheckoutProgress},
		{"checkout free text", "Ali Raza", checkoutSess, IntentCheckoutProgress},
		{"cart wins over checkout", "show my cart", checkoutSess, IntentCartMutation},
		{"house number is an address", "12 gulberg road lahore", addressSess, IntentCheckoutProgress},
		{"explicit add wins over address", "add 2 brufen", addressSess, IntentCartMutation},
		{"bare shorthand defers to address", "12 brufen", addressSess, IntentCheckoutProgress},

		{"open question", "do you sell baby products", empty, IntentUnclassified},
		{"greeting", "hello", empty, IntentUnclassified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text, tt.sess))
		})
	}
}

func TestIsCartMutation(t *testing.T) {
	assert.True(t, isCartMutation("add 5 panadol"))
	assert.True(t, isCartMutation("checkout"))
	assert.True(t, isCartMutation("remove brufen from my cart"))
	assert.True(t, isCartMutation("2 panadol"))
	assert.False(t, isCartMutation("panadol"))
	assert.False(t, isCartMutation("hello"))
	// "additional" must not trigger on the embedded verb.
	assert.False(t, isCartMutation("any additional 10 discounts"))
}

func TestShorthandOnly(t *testing.T) {
	assert.True(t, shorthandOnly("12 gulberg road lahore"))
	assert.True(t, shorthandOnly("5 panadol"))
	assert.False(t, shorthandOnly("add 5 panadol"))
	assert.False(t, shorthandOnly("5 panadol and checkout"))
	assert.False(t, shorthandOnly("gulberg road"))
}

func TestLooksLikeNewOrder(t *testing.T) {
	assert.True(t, looksLikeNewOrder("add 3 brufen"))
	assert.False(t, looksLikeNewOrder("yes"))
	assert.False(t, looksLikeNewOrder("the second one"))
	assert.False(t, looksLikeNewOrder("show my cart"))
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "cart_mutation", IntentCartMutation.String())
	assert.Equal(t, "unclassified", IntentUnclassified.String())
}
