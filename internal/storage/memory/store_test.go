package memory_test

import (
	"testing"

	"github.com/tinywideclouds/go-local-notifications/internal/storage/memory"
	"github.com/tinywideclouds/go-local-notifications/internal/storage/storetest"
	"github.com/tinywideclouds/go-local-notifications/pkg/dispatch"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) dispatch.Store {
		return memory.NewStore()
	})
}
