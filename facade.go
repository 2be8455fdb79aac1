package vault

import (
	"fmt"

	vaultcommand "github.com/goliatone/go-vault/command"
	"github.com/goliatone/go-vault/core"
	vaultquery "github.com/goliatone/go-vault/query"
)

type CommandQueryService interface {
	vaultcommand.MutatingService
	vaultquery.BalanceReader
	vaultquery.LedgerEventReader
}

type Commands struct {
	Deposit  *vaultcommand.DepositCommand
	Withdraw *vaultcommand.WithdrawCommand
	Transfer *vaultcommand.TransferCommand
}

type Queries struct {
	GetBalance       *vaultquery.GetBalanceQuery
	ListLedgerEvents *vaultquery.ListLedgerEventsQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	eventReader vaultquery.LedgerEventReader
}

// WithEventReader routes the event listing query at a dedicated reader, for
// callers that want to serve history straight from a store replica instead of
// going through the vault service.
func WithEventReader(reader vaultquery.LedgerEventReader) FacadeOption {
	return func(options *facadeOptions) {
		options.eventReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("vault: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.eventReader
	if reader == nil {
		reader = service
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Deposit:  vaultcommand.NewDepositCommand(service),
		Withdraw: vaultcommand.NewWithdrawCommand(service),
		Transfer: vaultcommand.NewTransferCommand(service),
	}
	facade.queries = Queries{
		GetBalance:       vaultquery.NewGetBalanceQuery(service),
		ListLedgerEvents: vaultquery.NewListLedgerEventsQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*core.Service)(nil)
