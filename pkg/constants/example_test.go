package constants_test

import (
	"fmt"
	"path"

	"github.com/agentstation/cssmap/pkg/constants"
)

// Example shows how per-spec document URLs are derived from the constants.
func Example() {
	fmt.Println(path.Join(constants.WebrefCSSDir, "css-color"+".json"))
	fmt.Printf("%d specs per batch\n", constants.DefaultBatchSize)
	// Output:
	// css/css-color.json
	// 10 specs per batch
}
