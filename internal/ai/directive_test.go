package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective_Chart(t *testing.T) {
	reply := "Here is the split.\n```json\n{\"type\":\"pie\",\"data\":{\"Tools\":12,\"Paint\":3.5},\"title\":\"Stock by category\"}\n```\nAnything else?"

	d, ok := ParseDirective(reply)
	require.True(t, ok)
	require.NotNil(t, d.Chart)
	assert.Equal(t, "pie", d.Chart.Type)
	assert.Equal(t, 3.5, d.Chart.Data["Paint"])
	assert.Equal(t, "Here is the split.\n\nAnything else?", StripDirective(reply))
}

func TestParseDirective_CreatePO(t *testing.T) {
	reply := "Drafting it.\n```json\n" +
		`{"type":"action","action":"create_po","data":{"supplier_name":"Acme","items":[` +
		`{"product_id":"7","name":"Widget","quantity":10,"price":2.5},` +
		`{"product_id":"abc","name":"Gadget","quantity":2,"price":4}]}}` +
		"\n```"

	d, ok := ParseDirective(reply)
	require.True(t, ok)
	require.NotNil(t, d.Action)
	require.NotNil(t, d.Action.PO)
	assert.Equal(t, "Acme", d.Action.PO.SupplierName)

	items := d.Action.PO.LineItems()
	require.Len(t, items, 2)
	require.NotNil(t, items[0].ProductID)
	assert.Equal(t, uint(7), *items[0].ProductID)
	assert.Equal(t, "25.00", items[0].Total.StringFixed(2))
	assert.Nil(t, items[1].ProductID, "non-numeric ids are dropped")
}

func TestParseDirective_Rejects(t *testing.T) {
	cases := map[string]string{
		"no block":        "Just text.",
		"bad json":        "```json\n{nope}\n```",
		"unknown chart":   "```json\n{\"type\":\"radar\",\"data\":{\"a\":1}}\n```",
		"empty chart":     "```json\n{\"type\":\"bar\",\"data\":{}}\n```",
		"unknown action":  "```json\n{\"type\":\"action\",\"action\":\"delete_all\",\"data\":{}}\n```",
		"no items":        "```json\n{\"type\":\"action\",\"action\":\"create_po\",\"data\":{\"supplier_name\":\"A\",\"items\":[]}}\n```",
		"zero quantity":   "```json\n{\"type\":\"action\",\"action\":\"create_po\",\"data\":{\"items\":[{\"name\":\"W\",\"quantity\":0,\"price\":1}]}}\n```",
		"half a unit":     "```json\n{\"type\":\"action\",\"action\":\"create_po\",\"data\":{\"items\":[{\"name\":\"W\",\"quantity\":1.5,\"price\":1}]}}\n```",
		"unnamed item":    "```json\n{\"type\":\"action\",\"action\":\"create_po\",\"data\":{\"items\":[{\"quantity\":1,\"price\":1}]}}\n```",
		"email no target": "```json\n{\"type\":\"action\",\"action\":\"draft_email\",\"data\":{\"subject\":\"s\",\"body\":\"b\"}}\n```",
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := ParseDirective(reply)
			assert.False(t, ok)
		})
	}
}

func TestParseDirective_DraftEmail(t *testing.T) {
	reply := "```json\n{\"type\":\"action\",\"action\":\"draft_email\",\"data\":{\"recipient\":\"Acme\",\"subject\":\"Restock\",\"body\":\"Please send 10 widgets.\"}}\n```"
	d, ok := ParseDirective(reply)
	require.True(t, ok)
	require.NotNil(t, d.Action.Email)
	assert.Equal(t, "Restock", d.Action.Email.Subject)
	assert.Empty(t, StripDirective(reply))
}

func TestSearchTerm(t *testing.T) {
	cases := []struct {
		msg  string
		term string
		ok   bool
	}{
		{"find red widget", "red widget", true},
		{"Where is the stapler?", "the stapler", true},
		{"pen", "pen", true},
		{"hi", "hi", false},
		{"show me ab", "ab", false},
		{"how are the sales numbers looking this month compared to the last one", "", false},
	}
	for _, tc := range cases {
		term, ok := SearchTerm(tc.msg)
		assert.Equal(t, tc.ok, ok, tc.msg)
		if tc.term != "" {
			assert.Equal(t, tc.term, term, tc.msg)
		}
	}
}

func TestIsPlaceholderSupplier(t *testing.T) {
	for _, s := range []string{"", "  ", "unknown", "UNKNOWN_SUPPLIER", "Please Specify Supplier"} {
		assert.True(t, IsPlaceholderSupplier(s), s)
	}
	assert.False(t, IsPlaceholderSupplier("Acme"))
}
