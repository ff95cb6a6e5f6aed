package upi

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuildLink(t *testing.T) {
	link := BuildLink(LinkParams{
		PayeeVPA:    "dairydrop@upi",
		PayeeName:   "DairyDrop Farms",
		Amount:      decimal.NewFromInt(170),
		ReferenceNo: "REF-1234-000001",
		Note:        "2 order(s)",
	})
	if !strings.HasPrefix(link, "upi://pay?") {
		t.Fatalf("unexpected scheme: %s", link)
	}
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	q := parsed.Query()
	if q.Get("pa") != "dairydrop@upi" {
		t.Fatalf("pa want dairydrop@upi, got %s", q.Get("pa"))
	}
	if q.Get("pn") != "DairyDrop Farms" {
		t.Fatalf("pn want DairyDrop Farms, got %s", q.Get("pn"))
	}
	if q.Get("am") != "170.00" {
		t.Fatalf("amount must carry two decimals, got %s", q.Get("am"))
	}
	if q.Get("cu") != "INR" {
		t.Fatalf("currency want INR, got %s", q.Get("cu"))
	}
	if q.Get("tr") != "REF-1234-000001" {
		t.Fatalf("tr want reference no, got %s", q.Get("tr"))
	}
}

func TestBuildLinkOmitsEmptyOptionals(t *testing.T) {
	link := BuildLink(LinkParams{
		PayeeVPA:  "dairydrop@upi",
		PayeeName: "DairyDrop",
		Amount:    decimal.RequireFromString("45.50"),
	})
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	q := parsed.Query()
	if _, ok := q["tr"]; ok {
		t.Fatal("tr should be omitted when empty")
	}
	if _, ok := q["tn"]; ok {
		t.Fatal("tn should be omitted when empty")
	}
	if q.Get("am") != "45.50" {
		t.Fatalf("amount want 45.50, got %s", q.Get("am"))
	}
}

func TestBuildQR(t *testing.T) {
	qr, err := BuildQR(LinkParams{
		PayeeVPA:  "dairydrop@upi",
		PayeeName: "DairyDrop",
		Amount:    decimal.NewFromInt(60),
	}, 0)
	if err != nil {
		t.Fatalf("build qr failed: %v", err)
	}
	if !strings.HasPrefix(qr, "data:image/png;base64,") {
		t.Fatalf("qr should be a png data uri, got prefix %q", qr[:32])
	}
}
