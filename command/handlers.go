package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-vault/core"
)

type MutatingService interface {
	Deposit(ctx context.Context, account core.AccountID, amount core.Amount) (core.DepositResult, error)
	Withdraw(ctx context.Context, account core.AccountID, amount core.Amount) (core.WithdrawResult, error)
	Transfer(ctx context.Context, from, to core.AccountID, amount core.Amount) (core.TransferResult, error)
}

type DepositCommand struct {
	service MutatingService
}

func NewDepositCommand(service MutatingService) *DepositCommand {
	return &DepositCommand{service: service}
}

func (c *DepositCommand) Execute(ctx context.Context, msg DepositMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: deposit service is required")
	}
	out, err := c.service.Deposit(ctx, msg.Account, msg.Amount)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type WithdrawCommand struct {
	service MutatingService
}

func NewWithdrawCommand(service MutatingService) *WithdrawCommand {
	return &WithdrawCommand{service: service}
}

func (c *WithdrawCommand) Execute(ctx context.Context, msg WithdrawMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: withdraw service is required")
	}
	out, err := c.service.Withdraw(ctx, msg.Account, msg.Amount)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type TransferCommand struct {
	service MutatingService
}

func NewTransferCommand(service MutatingService) *TransferCommand {
	return &TransferCommand{service: service}
}

func (c *TransferCommand) Execute(ctx context.Context, msg TransferMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: transfer service is required")
	}
	out, err := c.service.Transfer(ctx, msg.From, msg.To, msg.Amount)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
