package integrations_test

import (
	"fmt"

	"github.com/matzehuels/catup/pkg/integrations"
)

func ExampleNormalizeRepoURL() {
	fmt.Println(integrations.NormalizeRepoURL("git+https://github.com/acme/widget.git"))
	fmt.Println(integrations.NormalizeRepoURL("git@github.com:acme/widget.git"))
	// Output:
	// https://github.com/acme/widget
	// https://github.com/acme/widget
}
