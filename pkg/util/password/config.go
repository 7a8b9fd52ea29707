package password

import "github.com/Alijeyrad/mindbook_backend/config"

// Config holds Argon2id parameters plus the policy applied to new passwords.
type Config struct {
	MemoryKiB     uint32
	Iterations    uint32
	Parallelism   uint8
	SaltLength    uint32
	KeyLength     uint32
	LowMemoryMode bool

	// MinLength is enforced on passwords chosen by people, not on generated ones.
	MinLength int
	// GeneratedLength is the size of temporary passwords handed out by admins.
	GeneratedLength int
}

// params returns the Argon2 parameters, filling zero values from the defaults.
func (c Config) params() Params {
	d := DefaultParams()
	p := Params{
		Memory:      orDefault(c.MemoryKiB, d.Memory),
		Iterations:  orDefault(c.Iterations, d.Iterations),
		Parallelism: c.Parallelism,
		SaltLength:  orDefault(c.SaltLength, d.SaltLength),
		KeyLength:   orDefault(c.KeyLength, d.KeyLength),
	}
	if p.Parallelism == 0 {
		p.Parallelism = d.Parallelism
	}
	if c.LowMemoryMode && p.Memory > 32*1024 {
		p.Memory = 32 * 1024
		p.Iterations++
	}
	return p
}

func orDefault(v, d uint32) uint32 {
	if v == 0 {
		return d
	}
	return v
}

func DefaultConfig() Config {
	d := DefaultParams()
	return Config{
		MemoryKiB:       d.Memory,
		Iterations:      d.Iterations,
		Parallelism:     d.Parallelism,
		SaltLength:      d.SaltLength,
		KeyLength:       d.KeyLength,
		MinLength:       8,
		GeneratedLength: 12,
	}
}

// FromCentralConfig merges the hashing and authentication sections.
func FromCentralConfig(c *config.Config) Config {
	out := Config{
		MemoryKiB:       c.Password.MemoryKiB,
		Iterations:      c.Password.Iterations,
		Parallelism:     c.Password.Parallelism,
		SaltLength:      c.Password.SaltLength,
		KeyLength:       c.Password.KeyLength,
		LowMemoryMode:   c.Password.LowMemoryMode,
		MinLength:       c.Authentication.MinPasswordLength,
		GeneratedLength: c.Authentication.DefaultPasswordLength,
	}
	if out.MinLength <= 0 {
		out.MinLength = DefaultConfig().MinLength
	}
	if out.GeneratedLength <= 0 {
		out.GeneratedLength = DefaultConfig().GeneratedLength
	}
	return out
}
