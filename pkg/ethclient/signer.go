// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ethclient

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/SmoothBot/tx-latency-bench/internal/log"
	"github.com/SmoothBot/tx-latency-bench/internal/msgs"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"golang.org/x/crypto/sha3"
)

// Signer turns an unsigned transaction into the raw bytes accepted by eth_sendRawTransaction
type Signer interface {
	Address() *ethtypes.Address0xHex
	SignTransaction(ctx context.Context, txVersion EthTXVersion, chainID int64, tx *ethsigner.Transaction) (ethtypes.HexBytes0xPrefix, error)
}

type keySigner struct {
	kp *secp256k1.KeyPair
}

// NewKeySigner loads a secp256k1 private key supplied as hex, with or without the 0x prefix
func NewKeySigner(ctx context.Context, privateKeyHex string) (Signer, error) {
	keyBytes, err := ethtypes.NewHexBytes0xPrefix(strings.TrimSpace(privateKeyHex))
	if err != nil || len(keyBytes) != 32 {
		return nil, i18n.WrapError(ctx, err, msgs.MsgInvalidPrivateKey)
	}
	kp, err := secp256k1.NewSecp256k1KeyPair(keyBytes)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgInvalidPrivateKey)
	}
	return &keySigner{kp: kp}, nil
}

func (s *keySigner) Address() *ethtypes.Address0xHex {
	return &s.kp.Address
}

func (s *keySigner) SignTransaction(ctx context.Context, txVersion EthTXVersion, chainID int64, tx *ethsigner.Transaction) (ethtypes.HexBytes0xPrefix, error) {
	if chainID <= 0 {
		return nil, i18n.NewError(ctx, msgs.MsgSignerInvalidChain, chainID)
	}
	tx.From = json.RawMessage(`"` + s.kp.Address.String() + `"`)

	var sigPayload *ethsigner.TransactionSignaturePayload
	switch txVersion {
	case EIP1559:
		sigPayload = tx.SignaturePayloadEIP1559(chainID)
	case LEGACY_EIP155:
		sigPayload = tx.SignaturePayloadLegacyEIP155(chainID)
	default:
		return nil, i18n.NewError(ctx, msgs.MsgInvalidTXVersion, txVersion)
	}
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write(sigPayload.Bytes())
	sig, err := s.kp.SignDirect(hash.Sum(nil))
	var rawTX []byte
	if err == nil {
		switch txVersion {
		case EIP1559:
			rawTX, err = tx.FinalizeEIP1559WithSignature(sigPayload, sig)
		case LEGACY_EIP155:
			rawTX, err = tx.FinalizeLegacyEIP155WithSignature(sigPayload, sig, chainID)
		}
	}
	if err != nil {
		log.L(ctx).Errorf("signing failed (addr=%s): %s", s.kp.Address, err)
		return nil, err
	}
	return rawTX, nil
}

// CalculateTransactionHash is the keccak256 of the signed raw transaction,
// which is the hash the node will index the transaction under
func CalculateTransactionHash(rawTX []byte) ethtypes.HexBytes0xPrefix {
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write(rawTX)
	return hash.Sum(nil)
}
