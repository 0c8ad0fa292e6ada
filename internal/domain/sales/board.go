package sales

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Column is one kanban column: every card in a stage, ordered by position
type Column[T any] struct {
	Stage Stage
	Count int
	Value decimal.Decimal
	Cards []T
}

// BuildBoard groups cards into one column per stage in display order.
// Cards with an unknown stage are dropped.
func BuildBoard[T any](items []T, card func(T) Card, value func(T) decimal.Decimal) []Column[T] {
	columns := make([]Column[T], len(Stages))
	for i, stage := range Stages {
		columns[i] = Column[T]{Stage: stage, Value: decimal.Zero, Cards: make([]T, 0)}
	}

	for _, item := range items {
		idx := card(item).Stage.Order()
		if idx >= len(Stages) {
			continue
		}
		columns[idx].Cards = append(columns[idx].Cards, item)
		columns[idx].Count++
		columns[idx].Value = columns[idx].Value.Add(value(item))
	}

	for i := range columns {
		cards := columns[i].Cards
		sort.SliceStable(cards, func(a, b int) bool {
			return card(cards[a]).Position < card(cards[b]).Position
		})
	}

	return columns
}

// LeadCard extracts the placement of a lead
func LeadCard(l Lead) Card { return l.Card }

// LeadValue is the estimated value of a lead
func LeadValue(l Lead) decimal.Decimal { return l.EstimatedValue }

// OpportunityCard extracts the placement of an opportunity
func OpportunityCard(o Opportunity) Card { return o.Card }

// OpportunityValue is the amount of an opportunity
func OpportunityValue(o Opportunity) decimal.Decimal { return o.Amount }
