package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[DepositMessage]  = (*DepositCommand)(nil)
	_ gocmd.Commander[WithdrawMessage] = (*WithdrawCommand)(nil)
	_ gocmd.Commander[TransferMessage] = (*TransferCommand)(nil)
)
