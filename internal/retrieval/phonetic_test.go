package retrieval

import "testing"

func TestCrosslinkReconcilerMatchesPhoneticMisspelling(t *testing.T) {
	r := NewCrosslinkReconciler()
	titles := []string{"Schwarzenegger", "Einstein", "Washington"}

	corrected, confidence, matched := r.Reconcile("Shwartzenegger", titles)
	if !matched {
		t.Fatalf("Reconcile did not match a phonetically close title")
	}
	if corrected != "Schwarzenegger" {
		t.Fatalf("Reconcile corrected = %q, want %q", corrected, "Schwarzenegger")
	}
	if confidence <= 0 {
		t.Fatalf("Reconcile confidence = %v, want > 0", confidence)
	}
}

func TestCrosslinkReconcilerLeavesUnrelatedHintUnchanged(t *testing.T) {
	r := NewCrosslinkReconciler()
	titles := []string{"Schwarzenegger", "Einstein", "Washington"}

	corrected, confidence, matched := r.Reconcile("Completely Unrelated Topic", titles)
	if matched {
		t.Fatalf("Reconcile unexpectedly matched: %q (confidence %v)", corrected, confidence)
	}
	if corrected != "Completely Unrelated Topic" {
		t.Fatalf("Reconcile corrected = %q, want hint unchanged", corrected)
	}
}

func TestCrosslinkReconcilerEmptyInputsNoMatch(t *testing.T) {
	r := NewCrosslinkReconciler()
	if _, _, matched := r.Reconcile("", []string{"Einstein"}); matched {
		t.Fatalf("Reconcile matched on empty hint")
	}
	if _, _, matched := r.Reconcile("Einstein", nil); matched {
		t.Fatalf("Reconcile matched with no titles")
	}
}
