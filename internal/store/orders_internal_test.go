package store

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuildOrderLines(t *testing.T) {
	sources := []lineSource{
		{ProductID: 1, SellerID: 10, Name: "A", Price: decimal.NewFromInt(100), Quantity: 2},
		{ProductID: 2, SellerID: 20, Name: "B", Price: decimal.NewFromInt(50), Quantity: 2},
		{ProductID: 3, SellerID: 10, Name: "C", Price: decimal.NewFromInt(25), Quantity: 4},
	}

	items, buckets, total := buildOrderLines(sources)

	if len(items) != 3 {
		t.Fatalf("Expected 3 line items, got %d", len(items))
	}
	if !total.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expected total 400, got %s", total)
	}

	itemSum := decimal.Zero
	for _, item := range items {
		if !item.Subtotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))) {
			t.Errorf("Item %d subtotal mismatch", item.ProductID)
		}
		itemSum = itemSum.Add(item.Subtotal)
	}
	if !itemSum.Equal(total) {
		t.Errorf("Sum of line items %s should equal total %s", itemSum, total)
	}

	// One bucket per seller, with both of seller 10's lines merged.
	if len(buckets) != 2 {
		t.Fatalf("Expected 2 seller buckets, got %d", len(buckets))
	}
	if !buckets[10].Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected seller 10 bucket 300, got %s", buckets[10])
	}
	if !buckets[20].Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected seller 20 bucket 100, got %s", buckets[20])
	}
}

func TestBuildOrderLinesDuplicateProduct(t *testing.T) {
	sources := []lineSource{
		{ProductID: 1, SellerID: 10, Name: "A", Price: decimal.NewFromInt(100), Quantity: 2},
		{ProductID: 1, SellerID: 10, Name: "A", Price: decimal.NewFromInt(100), Quantity: 1},
	}

	items, buckets, total := buildOrderLines(sources)

	if len(items) != 2 {
		t.Fatalf("Duplicate product ids must stay separate line items, got %d", len(items))
	}
	if !total.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected total 300, got %s", total)
	}
	if !buckets[10].Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected one merged bucket of 300, got %s", buckets[10])
	}
}
