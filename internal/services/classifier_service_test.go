package services

import (
	"testing"

	"heritage-experiment/concordance/internal/constants"
	"heritage-experiment/concordance/internal/models/dtos"
)

func TestClassify_ARKIdentifier(t *testing.T) {
	classifier := NewClassifierService()

	cls := classifier.Classify("identifier", "ark:/12345/x6")
	if cls.Type != dtos.IdentifierARK {
		t.Fatalf("expected ark classification, got %s", cls.Type)
	}
	if cls.PropertyID == nil || *cls.PropertyID != constants.PropertyARKIdentifier {
		t.Errorf("expected property %s, got %v", constants.PropertyARKIdentifier, cls.PropertyID)
	}
	if cls.Label != "ARK ID" {
		t.Errorf("unexpected label %q", cls.Label)
	}

	url := classifier.CanonicalURL(dtos.IdentifierARK, "ark:/12345/x6")
	if url != "https://n2t.net/ark:/12345/x6" {
		t.Errorf("unexpected canonical URL %q", url)
	}
}

func TestClassify_ARKEmbeddedInURL(t *testing.T) {
	classifier := NewClassifierService()

	// An ARK inside a resolver URL still classifies as ARK, not item link.
	cls := classifier.Classify("identifier", "https://n2t.net/ark:/99999/fk4abc")
	if cls.Type != dtos.IdentifierARK {
		t.Fatalf("expected ark classification, got %s", cls.Type)
	}
}

func TestClassify_OCLCNumber(t *testing.T) {
	classifier := NewClassifierService()

	for _, value := range []string{"123456789", "(OCoLC)123456789", "ocm12345678", "ocn123456789"} {
		cls := classifier.Classify("identifier.oclc", value)
		if cls.Type != dtos.IdentifierBibliographic {
			t.Errorf("value %q: expected bibliographic, got %s", value, cls.Type)
			continue
		}
		if *cls.PropertyID != constants.PropertyOCLCNumber {
			t.Errorf("value %q: expected property %s, got %s", value, constants.PropertyOCLCNumber, *cls.PropertyID)
		}
	}

	// The key must hint at OCLC: a bare number elsewhere is not an OCLC id.
	cls := classifier.Classify("extent", "123456789")
	if cls.Type != dtos.IdentifierUnknown {
		t.Errorf("expected unknown for numeric non-oclc key, got %s", cls.Type)
	}
}

func TestClassify_OCLCCanonicalURL(t *testing.T) {
	classifier := NewClassifierService()

	url := classifier.CanonicalURL(dtos.IdentifierBibliographic, "(OCoLC)881234567")
	if url != "https://search.worldcat.org/oclc/881234567" {
		t.Errorf("unexpected canonical URL %q", url)
	}
}

func TestClassify_ItemLink(t *testing.T) {
	classifier := NewClassifierService()

	cls := classifier.Classify("@id", "https://collections.example.org/items/123")
	if cls.Type != dtos.IdentifierItemLink {
		t.Fatalf("expected item-link, got %s", cls.Type)
	}
	if *cls.PropertyID != constants.PropertyDescribedAtURL {
		t.Errorf("expected property %s, got %s", constants.PropertyDescribedAtURL, *cls.PropertyID)
	}

	// Item-path URLs under any key also classify.
	cls = classifier.Classify("source", "https://collections.example.org/records/55")
	if cls.Type != dtos.IdentifierItemLink {
		t.Errorf("expected item-link for record path, got %s", cls.Type)
	}
}

func TestClassify_Unknown(t *testing.T) {
	classifier := NewClassifierService()

	cls := classifier.Classify("title", "Aerial photograph of campus")
	if cls.Type != dtos.IdentifierUnknown {
		t.Fatalf("expected unknown, got %s", cls.Type)
	}
	if cls.PropertyID != nil {
		t.Errorf("expected nil property id, got %s", *cls.PropertyID)
	}
}

func TestClassify_NestedSampleValue(t *testing.T) {
	classifier := NewClassifierService()

	sample := map[string]interface{}{"@value": "ark:/12345/zz9"}
	cls := classifier.Classify("identifier", sample)
	if cls.Type != dtos.IdentifierARK {
		t.Errorf("expected ark from nested @value, got %s", cls.Type)
	}

	arr := []interface{}{map[string]interface{}{"@id": "https://collections.example.org/items/9"}}
	cls = classifier.Classify("link", arr)
	if cls.Type != dtos.IdentifierItemLink {
		t.Errorf("expected item-link from array element, got %s", cls.Type)
	}
}

func TestCanonicalURLForProperty(t *testing.T) {
	classifier := NewClassifierService()

	if url := classifier.CanonicalURLForProperty(constants.PropertyARKIdentifier, "ark:/12345/x6"); url != "https://n2t.net/ark:/12345/x6" {
		t.Errorf("unexpected ARK URL %q", url)
	}
	if url := classifier.CanonicalURLForProperty(constants.PropertyOCLCNumber, "ocm12345678"); url != "https://search.worldcat.org/oclc/12345678" {
		t.Errorf("unexpected OCLC URL %q", url)
	}
	if url := classifier.CanonicalURLForProperty("P1476", "anything"); url != "" {
		t.Errorf("expected empty URL for unrelated property, got %q", url)
	}
}
