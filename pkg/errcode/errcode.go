package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	CreateFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableExistsCheckError
	DBCheckoutError

	// Metadata store errors
	MetaGORMConnectionError
	MetaResetError
	MetaCreateError
	MetaUpgradeError
	MetaDecodeError

	// View configuration errors
	ViewOptionsError
	ViewDependencyRefError
	ViewNotMaterializedError
	ViewNotFoundError

	// Declaration source errors
	DeclManifestError
	DeclSQLFileError
	DeclTemplateError
	DeclDuplicateError
)
