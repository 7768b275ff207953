// Package all registers every storage backend with the factory. Binaries
// blank-import it so config selects the backend at runtime.
package all

import (
	_ "salesdb/internal/storage/mssql"
	_ "salesdb/internal/storage/postgres"
	_ "salesdb/internal/storage/sqlite"
)
