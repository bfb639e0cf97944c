package sql

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"

	"github.com/flowsql/flowsql/batch"
)

// Crypto built-ins (spec.md §4.5): AES-128-CBC/PKCS7 encrypt/decrypt and
// base64 codec. hex/unhex are registered in function_bits.go — spec.md
// §4.5 lists them under both the numeric-bit and crypto sections, but
// they are one function each, not two.

func init() {
	registerFunction(&Function{
		Name: "aes_encrypt", MinArgs: 3, MaxArgs: 3,
		CheckArgs: fixedReturn(batch.BytesType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if anyNull(args) {
				return batch.Null(batch.BytesType())
			}
			out, err := aesEncryptCBC([]byte(args[0].AsString()), keyBytes(args[1]), keyBytes(args[2]))
			if err != nil {
				return batch.Null(batch.BytesType())
			}
			return batch.Bytes(out)
		},
	})

	registerFunction(&Function{
		Name: "aes_decrypt", MinArgs: 3, MaxArgs: 3,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if anyNull(args) {
				return batch.Null(batch.StringType())
			}
			cipherBytes := valueBytes(args[0])
			out, err := aesDecryptCBC(cipherBytes, keyBytes(args[1]), keyBytes(args[2]))
			if err != nil {
				return batch.Null(batch.StringType())
			}
			return batch.Str(string(out))
		},
	})

	registerFunction(&Function{
		Name: "to_base64", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.StringType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(batch.StringType())
			}
			return batch.Str(base64.StdEncoding.EncodeToString(valueBytes(args[0])))
		},
	})

	registerFunction(&Function{
		Name: "from_base64", MinArgs: 1, MaxArgs: 1,
		CheckArgs: fixedReturn(batch.BytesType()),
		EvalFunc: func(args []batch.Value, ctx *EvalCtx) batch.Value {
			if args[0].IsNull() {
				return batch.Null(batch.BytesType())
			}
			b, err := base64.StdEncoding.DecodeString(args[0].AsString())
			if err != nil {
				return batch.Null(batch.BytesType()) // DecodeError -> NULL
			}
			return batch.Bytes(b)
		},
	})
}

func anyNull(args []batch.Value) bool {
	for _, a := range args {
		if a.IsNull() {
			return true
		}
	}
	return false
}

func valueBytes(v batch.Value) []byte {
	if v.Type().Kind == batch.KindBytes {
		return v.AsBytes()
	}
	return []byte(v.AsString())
}

// keyBytes pads/truncates a key or IV to AES-128's 16-byte block size.
func keyBytes(v batch.Value) []byte {
	raw := valueBytes(v)
	out := make([]byte, 16)
	copy(out, raw)
	return out
}

func aesEncryptCBC(plain, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plain, block.BlockSize())
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func aesDecryptCBC(ciphertext, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, &EvalError{Code: DecodeError, Message: "ciphertext is not a multiple of the block size"}
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, &EvalError{Code: DecodeError, Message: "empty plaintext"}
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, &EvalError{Code: DecodeError, Message: "invalid PKCS7 padding"}
	}
	return data[:len(data)-padLen], nil
}
