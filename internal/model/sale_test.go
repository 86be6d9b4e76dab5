package model

import "testing"

func TestCanTransitionSaleStatus(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"lead to proposal", SaleStatusLead, SaleStatusProposalSent, true},
		{"proposal to negotiating", SaleStatusProposalSent, SaleStatusNegotiating, true},
		{"negotiating to closed won", SaleStatusNegotiating, SaleStatusClosedWon, true},
		{"skip straight to closed won", SaleStatusLead, SaleStatusClosedWon, true},
		{"skip to negotiating", SaleStatusLead, SaleStatusNegotiating, true},
		{"early cancellation", SaleStatusLead, SaleStatusCancelled, true},
		{"lost during negotiation", SaleStatusNegotiating, SaleStatusClosedLost, true},

		{"backwards to lead", SaleStatusProposalSent, SaleStatusLead, false},
		{"backwards from negotiating", SaleStatusNegotiating, SaleStatusProposalSent, false},
		{"same status", SaleStatusNegotiating, SaleStatusNegotiating, false},
		{"reopen closed won", SaleStatusClosedWon, SaleStatusNegotiating, false},
		{"won to lost", SaleStatusClosedWon, SaleStatusClosedLost, false},
		{"cancel after loss", SaleStatusClosedLost, SaleStatusCancelled, false},
		{"unknown from", "archived", SaleStatusLead, false},
		{"unknown to", SaleStatusLead, "archived", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransitionSaleStatus(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransitionSaleStatus(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminalSaleStatus(t *testing.T) {
	terminal := []string{SaleStatusClosedWon, SaleStatusClosedLost, SaleStatusCancelled}
	for _, status := range terminal {
		if !IsTerminalSaleStatus(status) {
			t.Errorf("%s should be terminal", status)
		}
	}
	open := []string{SaleStatusLead, SaleStatusProposalSent, SaleStatusNegotiating}
	for _, status := range open {
		if IsTerminalSaleStatus(status) {
			t.Errorf("%s should not be terminal", status)
		}
	}
}
