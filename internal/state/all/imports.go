// Package all links every state backend into the binary. Importing it for
// side effects registers the backends with the state factory registry.
package all

import (
	_ "gem/internal/state/postgres"
	_ "gem/internal/state/sqlite"
)
