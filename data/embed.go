// Package data embeds the MariaDB init DDL used to seed test databases.
package data

import (
	_ "embed"
)

//go:embed initdb/mariadb/002-ddl-tables.sql
var InitdbTablesSQL string

//go:embed initdb/mariadb/003-ddl-privileges.sql
var InitdbPrivilegesSQL string
