// Package all registers every built-in storage backend.
package all

import (
	_ "github.com/vvka-141/tripload/internal/storage/mysql"
	_ "github.com/vvka-141/tripload/internal/storage/postgres"
	_ "github.com/vvka-141/tripload/internal/storage/sqlite"
	_ "github.com/vvka-141/tripload/internal/storage/sqlserver"
)
