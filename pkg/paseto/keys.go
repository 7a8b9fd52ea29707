package pasetotoken

import (
	"strings"

	paseto "aidanwoods.dev/go-paseto"
)

type Mode string

const (
	ModeLocal  Mode = "local"  // v4.local, encrypted
	ModePublic Mode = "public" // v4.public, signed
)

// Keys holds the key material for one Mode. For ModePublic, Secret is nil on
// a verify-only instance.
type Keys struct {
	Mode      Mode
	Symmetric *paseto.V4SymmetricKey
	Secret    *paseto.V4AsymmetricSecretKey
	Public    *paseto.V4AsymmetricPublicKey
}

// KeyStrings is the hex form read from configuration.
type KeyStrings struct {
	Mode         Mode
	SymmetricHex string
	SecretHex    string
	PublicHex    string
}

func LoadKeys(in KeyStrings) (Keys, error) {
	switch in.Mode {
	case ModeLocal:
		return localKeys(strings.TrimSpace(in.SymmetricHex))
	case ModePublic:
		return publicKeys(strings.TrimSpace(in.SecretHex), strings.TrimSpace(in.PublicHex))
	}
	return Keys{}, misconfigured("paseto mode must be local or public, got " + string(in.Mode))
}

func localKeys(hex string) (Keys, error) {
	if hex == "" {
		return Keys{}, misconfigured("local mode needs symmetric_key")
	}
	k, err := paseto.V4SymmetricKeyFromHex(hex)
	if err != nil {
		return Keys{}, misconfigured("symmetric_key: " + err.Error())
	}
	return Keys{Mode: ModeLocal, Symmetric: &k}, nil
}

// publicKeys derives the public half from the secret when only the secret is
// given. An explicit public key wins.
func publicKeys(secretHex, publicHex string) (Keys, error) {
	out := Keys{Mode: ModePublic}
	if secretHex != "" {
		sk, err := paseto.NewV4AsymmetricSecretKeyFromHex(secretHex)
		if err != nil {
			return Keys{}, misconfigured("secret_key: " + err.Error())
		}
		pk := sk.Public()
		out.Secret, out.Public = &sk, &pk
	}
	if publicHex != "" {
		pk, err := paseto.NewV4AsymmetricPublicKeyFromHex(publicHex)
		if err != nil {
			return Keys{}, misconfigured("public_key: " + err.Error())
		}
		out.Public = &pk
	}
	if out.Public == nil {
		return Keys{}, misconfigured("public mode needs secret_key or public_key")
	}
	return out, nil
}

func NewLocalKeys() Keys {
	k := paseto.NewV4SymmetricKey()
	return Keys{Mode: ModeLocal, Symmetric: &k}
}

func NewPublicKeys() Keys {
	sk := paseto.NewV4AsymmetricSecretKey()
	pk := sk.Public()
	return Keys{Mode: ModePublic, Secret: &sk, Public: &pk}
}
