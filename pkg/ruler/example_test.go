package ruler_test

import (
	"fmt"

	"github.com/matzehuels/sitecanvas/pkg/ruler"
)

func ExampleBuildMarks() {
	for _, m := range ruler.BuildMarks(-10, 50, ruler.DefaultSteps) {
		fmt.Printf("%v %v %q\n", m.Value, m.Kind, m.Label)
	}
	// Output:
	// -10 minor ""
	// 0 major "0"
	// 10 minor ""
	// 20 minor ""
	// 30 minor ""
	// 40 minor ""
	// 50 mid ""
}
