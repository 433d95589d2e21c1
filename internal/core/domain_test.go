package core

import (
	"errors"
	"testing"
)

func TestExpenseStatusDerivation(t *testing.T) {
	cases := []struct {
		name   string
		review *Review
		want   ExpenseStatus
	}{
		{"no review means pending", nil, StatusPending},
		{"approve decision", &Review{Decision: DecisionApprove, ReviewerID: 2}, StatusApproved},
		{"reject decision", &Review{Decision: DecisionReject, ReviewerID: 2, Feedback: "no receipt"}, StatusRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := Expense{Review: tc.review}
			if got := e.Status(); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in  string
		out Category
		ok  bool
	}{
		{"equipment", CategoryEquipment, true},
		{" Labor ", CategoryLabor, true},
		{"TRAVEL", CategoryTravel, true},
		{"materials", CategoryMaterials, true},
		{"permits", CategoryPermits, true},
		{"other", CategoryOther, true},
		{"snacks", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseDecision(t *testing.T) {
	if d, err := ParseDecision("Approve"); err != nil || d != DecisionApprove {
		t.Fatalf("expected approve, got %s (err=%v)", d, err)
	}
	if d, err := ParseDecision("reject"); err != nil || d != DecisionReject {
		t.Fatalf("expected reject, got %s (err=%v)", d, err)
	}
	if _, err := ParseDecision("maybe"); err == nil {
		t.Fatal("expected error for unknown decision")
	}
}

func TestExpenseDraftValidate(t *testing.T) {
	valid := ExpenseDraft{
		ProjectID:   1,
		Amount:      Money{Cents: 500},
		Description: "site visit fuel",
		Category:    CategoryTravel,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid draft should pass: %v", err)
	}

	longDesc := make([]byte, 201)
	for i := range longDesc {
		longDesc[i] = 'x'
	}

	cases := []struct {
		name   string
		mutate func(d ExpenseDraft) ExpenseDraft
		field  string
	}{
		{"zero amount", func(d ExpenseDraft) ExpenseDraft { d.Amount.Cents = 0; return d }, "amount"},
		{"negative amount", func(d ExpenseDraft) ExpenseDraft { d.Amount.Cents = -100; return d }, "amount"},
		{"blank description", func(d ExpenseDraft) ExpenseDraft { d.Description = "  "; return d }, "description"},
		{"long description", func(d ExpenseDraft) ExpenseDraft { d.Description = string(longDesc); return d }, "description"},
		{"bad category", func(d ExpenseDraft) ExpenseDraft { d.Category = "snacks"; return d }, "category"},
		{"missing project", func(d ExpenseDraft) ExpenseDraft { d.ProjectID = 0; return d }, "projectId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.mutate(valid).Validate()
			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, ve.Field)
			}
		})
	}
}

func TestRolePermissions(t *testing.T) {
	cases := []struct {
		role      Role
		canReview bool
	}{
		{RoleAdmin, true},
		{RoleManager, true},
		{RoleSalesperson, false},
		{RoleEmployee, false},
	}
	for _, tc := range cases {
		if got := tc.role.CanReview(); got != tc.canReview {
			t.Fatalf("%s CanReview expected %v, got %v", tc.role, tc.canReview, got)
		}
	}
}
