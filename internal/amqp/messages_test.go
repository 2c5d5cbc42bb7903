package amqp

import (
	"testing"

	"kharcha/internal/core"
)

func TestBudgetAlertMessageRoundTrip(t *testing.T) {
	msg := NewBudgetAlertMessage(core.BudgetSignal{
		Category: "Food",
		Status:   core.BudgetExceeded,
		Spent:    450,
		Limit:    400,
		Currency: "INR",
	})

	if msg.ID == "" {
		t.Fatal("message should carry a generated id")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := BudgetAlertMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if got.ID != msg.ID || got.Category != "Food" || got.Status != "exceeded" {
		t.Errorf("round trip = %+v", got)
	}
	if got.Spent != 450 || got.Limit != 400 || got.Currency != "INR" {
		t.Errorf("amounts = %+v", got)
	}
}

func TestBudgetAlertMessageFromJSONInvalid(t *testing.T) {
	if _, err := BudgetAlertMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("invalid payload should fail to parse")
	}
}
