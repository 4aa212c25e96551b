package memory_test

import (
	"testing"

	"github.com/aretw0/cairn/pkg/adapters/memory"
	"github.com/aretw0/cairn/pkg/ports"
)

func TestMemoryRecordStore_Contract(t *testing.T) {
	ports.RunRecordStoreContract(t, memory.NewRecordStore())
}

func TestMemoryResultStore_Contract(t *testing.T) {
	ports.RunResultStoreContract(t, memory.NewResultStore())
}
