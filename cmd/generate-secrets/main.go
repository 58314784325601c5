package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
)

// hexSecret returns n random bytes as a hex string
func hexSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func main() {
	fmt.Println("===========================================")
	fmt.Println("JWT Secret Generator for TourVista")
	fmt.Println("===========================================")
	fmt.Println()

	// 256-bit secrets, one per token type
	accessSecret, err := hexSecret(32)
	if err != nil {
		log.Fatalf("Failed to generate access secret: %v", err)
	}
	refreshSecret, err := hexSecret(32)
	if err != nil {
		log.Fatalf("Failed to generate refresh secret: %v", err)
	}

	fmt.Println("Secrets generated successfully!")
	fmt.Println()
	fmt.Println("Add these to your .env file or deployment secrets:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)
	fmt.Println()
	fmt.Println("IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
