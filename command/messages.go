package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-vault/core"
)

const (
	TypeDeposit  = "vault.command.deposit"
	TypeWithdraw = "vault.command.withdraw"
	TypeTransfer = "vault.command.transfer"
)

type DepositMessage struct {
	Account core.AccountID
	Amount  core.Amount
}

func (DepositMessage) Type() string { return TypeDeposit }

func (m DepositMessage) Validate() error {
	if err := validateAccount(m.Account); err != nil {
		return err
	}
	if m.Amount == 0 {
		return fmt.Errorf("command: amount must be greater than zero")
	}
	return nil
}

type WithdrawMessage struct {
	Account core.AccountID
	Amount  core.Amount
}

func (WithdrawMessage) Type() string { return TypeWithdraw }

func (m WithdrawMessage) Validate() error {
	if err := validateAccount(m.Account); err != nil {
		return err
	}
	if m.Amount == 0 {
		return fmt.Errorf("command: amount must be greater than zero")
	}
	return nil
}

type TransferMessage struct {
	From   core.AccountID
	To     core.AccountID
	Amount core.Amount
}

func (TransferMessage) Type() string { return TypeTransfer }

func (m TransferMessage) Validate() error {
	if err := validateAccount(m.From); err != nil {
		return err
	}
	if err := validateAccount(m.To); err != nil {
		return err
	}
	if m.Amount == 0 {
		return fmt.Errorf("command: amount must be greater than zero")
	}
	return nil
}

func validateAccount(account core.AccountID) error {
	if strings.TrimSpace(string(account)) == "" {
		return fmt.Errorf("command: account id is required")
	}
	return nil
}
