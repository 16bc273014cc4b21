package biomass

import (
	"testing"

	"biomassoutput/testutil"
)

func TestAggregationDoesNotImportStorage(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.StorageImportForbidden, "aggregation works on host views only; writers own storage")
}
