// Command secret stores an encrypted operator value in key_value_pairs,
// e.g. the mailbox credentials used for OTP mail:
//
//	secret -name alert-email-address -value otp@example.edu
//	secret -name alert-email-password -value '...'
//	secret -name alert-email-address -show
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/connectpp/student-network/internal/config"
	"github.com/connectpp/student-network/internal/database"
	"github.com/connectpp/student-network/internal/repository"
	"github.com/connectpp/student-network/internal/utils"
)

func main() {
	var (
		fName  string
		fValue string
		fShow  bool
	)
	flag.StringVar(&fName, "name", "", "key to write or read")
	flag.StringVar(&fValue, "value", "", "plain text value to encrypt and store")
	flag.BoolVar(&fShow, "show", false, "print the decrypted value stored under -name")
	flag.Parse()

	if err := run(fName, fValue, fShow); err != nil {
		fmt.Fprintln(os.Stderr, "secret:", err)
		os.Exit(1)
	}
}

func run(name, value string, show bool) error {
	if name == "" || (value == "" && !show) {
		flag.Usage()
		return fmt.Errorf("-name and one of -value or -show are required")
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cipher, err := utils.NewCipher(cfg.CipherSecret)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		return err
	}
	kv := repository.NewKeyValueRepo(db)

	if show {
		stored, err := kv.Get(ctx, name)
		if err != nil {
			return err
		}
		plain, err := cipher.Decrypt(stored)
		if err != nil {
			return err
		}
		fmt.Println(plain)
		return nil
	}

	enc, err := cipher.Encrypt(value)
	if err != nil {
		return err
	}
	if err := kv.Put(ctx, name, enc); err != nil {
		return err
	}
	fmt.Printf("stored %s\n", name)
	return nil
}
