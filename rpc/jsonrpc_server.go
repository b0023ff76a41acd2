// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/ava-labs/countervm/chain"
	"github.com/ava-labs/countervm/codec"
)

type JSONRPCServer struct {
	vm VM
}

func NewJSONRPCServer(vm VM) *JSONRPCServer {
	return &JSONRPCServer{vm}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.vm.Logger().Info("ping")
	reply.Success = true
	return nil
}

type NetworkReply struct {
	NetworkID      uint32        `json:"networkId"`
	ChainID        ids.ID        `json:"chainId"`
	ProgramID      codec.Address `json:"programId"`
	ValidityWindow int64         `json:"validityWindow"`
}

func (j *JSONRPCServer) Network(_ *http.Request, _ *struct{}, reply *NetworkReply) (err error) {
	r := j.vm.Rules()
	reply.NetworkID = r.NetworkID()
	reply.ChainID = r.GetChainID()
	reply.ProgramID = r.GetProgramID()
	reply.ValidityWindow = r.GetValidityWindow()
	return nil
}

type CounterAddressReply struct {
	Address codec.Address `json:"address"`
	Bump    uint8         `json:"bump"`
}

func (j *JSONRPCServer) CounterAddress(_ *http.Request, _ *struct{}, reply *CounterAddressReply) error {
	reply.Address, reply.Bump = j.vm.CounterAddress()
	return nil
}

type CounterReply struct {
	Address codec.Address `json:"address"`
	Exists  bool          `json:"exists"`
	Count   uint64        `json:"count"`
	Bump    uint8         `json:"bump"`
}

func (j *JSONRPCServer) Counter(req *http.Request, _ *struct{}, reply *CounterReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Counter")
	defer span.End()

	c, exists, err := j.vm.GetCounter(ctx)
	if err != nil {
		return err
	}
	reply.Address, _ = j.vm.CounterAddress()
	reply.Exists = exists
	if exists {
		reply.Count = c.Count
		reply.Bump = c.Bump
	}
	return nil
}

type BalanceArgs struct {
	Address codec.Address `json:"address"`
}

type BalanceReply struct {
	Amount uint64 `json:"amount"`
}

func (j *JSONRPCServer) Balance(req *http.Request, args *BalanceArgs, reply *BalanceReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Balance")
	defer span.End()

	balance, err := j.vm.GetBalance(ctx, args.Address)
	if err != nil {
		return err
	}
	reply.Amount = balance
	return nil
}

type SubmitTxArgs struct {
	Tx codec.Bytes `json:"tx"`
}

type SubmitTxReply struct {
	TxID   ids.ID        `json:"txId"`
	Result *chain.Result `json:"result"`
}

func (j *JSONRPCServer) SubmitTx(
	req *http.Request,
	args *SubmitTxArgs,
	reply *SubmitTxReply,
) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.SubmitTx")
	defer span.End()

	tx, err := chain.ParseTx(args.Tx, j.vm.Parser())
	if err != nil {
		return fmt.Errorf("%w: unable to unmarshal on public service", err)
	}
	txID := tx.ID()
	result, err := j.vm.Submit(ctx, tx)
	if err != nil {
		j.vm.Logger().Debug("rejected submitted tx",
			zap.Stringer("txID", txID),
			zap.Error(err),
		)
		return err
	}
	reply.TxID = txID
	reply.Result = result
	return nil
}
