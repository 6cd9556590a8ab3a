package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateID returns a 26 character lowercase id, the shape chat platforms
// use for their own object ids.
func GenerateID() string {
	id, err := gonanoid.Generate(idAlphabet, 26)
	if err != nil {
		return ""
	}
	return id
}
