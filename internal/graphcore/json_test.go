package graphcore

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/sourcecred/credrank/pkg/models"
)

// TestJSON_FieldNamesAreStable locks down the envelope field names
// spec.md §9's Open Question 2 resolves as the only names the encoder
// and decoder agree on: a rename here would silently break any
// external reader of a stored document.
func TestJSON_FieldNamesAreStable(t *testing.T) {
	doc, err := NewChainView(buildMinimalGraph(t)).ToSparseChain()
	if err != nil {
		t.Fatalf("ToSparseChain returned error: %v", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("json.Marshal returned error: %v", err)
	}
	s := string(raw)

	for _, field := range []string{
		`"type"`, `"version"`, `"payload"`,
		`"sortedNodes"`, `"indexedEdges"`, `"participants"`,
		`"finiteEpochBoundaries"`, `"parameters"`, `"contentHash"`,
	} {
		if !strings.Contains(s, field) {
			t.Fatalf("encoded document is missing expected field %s", field)
		}
	}
}

func TestJSON_MarshalUnmarshalRoundTrips(t *testing.T) {
	doc, err := NewChainView(buildMinimalGraph(t)).ToSparseChain()
	if err != nil {
		t.Fatalf("ToSparseChain returned error: %v", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("json.Marshal returned error: %v", err)
	}

	var redecoded models.MarkovProcessGraphDocument
	if err := json.Unmarshal(raw, &redecoded); err != nil {
		t.Fatalf("json.Unmarshal returned error: %v", err)
	}
	if !reflect.DeepEqual(doc, redecoded) {
		t.Fatalf("decoded document does not equal the original:\noriginal: %+v\ndecoded:  %+v", doc, redecoded)
	}
}
