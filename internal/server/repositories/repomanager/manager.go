package repomanager

import (
	"github.com/fairmanage/tenantportal/internal/dbx"
	"github.com/fairmanage/tenantportal/internal/server/repositories/accounts"
	"github.com/fairmanage/tenantportal/internal/server/repositories/groups"
	"github.com/fairmanage/tenantportal/internal/server/repositories/setuptokens"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same constructors for pooled and transactional access.
type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Groups(db dbx.DBTX) groups.Repository
	SetupTokens(db dbx.DBTX) setuptokens.Repository
}
