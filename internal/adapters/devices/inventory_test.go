package devices

import (
	"testing"

	"github.com/airgapwing/hidinject/internal/core/domain"
)

func TestInMemoryInventory_PutThenGet(t *testing.T) {
	inv := NewInMemoryInventory()
	addr := domain.RFAddress{0xaa, 0xbb, 0xcc, 0xdd, 0xee}
	d := domain.Device{Address: addr, DefaultLang: domain.LangUS}

	if _, ok := inv.GetDevice(addr); ok {
		t.Fatal("expected miss before Put")
	}

	inv.Put(d)
	got, ok := inv.GetDevice(addr)
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if got != d {
		t.Fatalf("GetDevice = %+v, want %+v", got, d)
	}
}

func TestInMemoryInventory_MissReturnsZeroValue(t *testing.T) {
	inv := NewInMemoryInventory()
	got, ok := inv.GetDevice(domain.RFAddress{1, 2, 3, 4, 5})
	if ok {
		t.Fatal("expected miss for unseeded address")
	}
	if got != (domain.Device{}) {
		t.Fatalf("expected zero-value device on miss, got %+v", got)
	}
}
