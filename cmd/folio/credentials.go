// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"folio/internal/auth"
)

// hashPassword prints env lines for a new admin password. The password is
// the first argument, or the first line of stdin when no argument is given.
// The hash is printed base64-encoded as well, since raw bcrypt hashes
// contain "$" which Docker Compose env files expand.
func hashPassword(args []string, stdin io.Reader, stdout io.Writer) error {
	var password string
	if len(args) > 0 {
		password = args[0]
	} else {
		fmt.Fprint(stdout, "Admin password: ")
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
		fmt.Fprintln(stdout)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	secret, err := auth.GenerateSecret(32)
	if err != nil {
		return fmt.Errorf("generating JWT secret: %w", err)
	}

	fmt.Fprintf(stdout, "ADMIN_PASSWORD_HASH=%s\n", base64.StdEncoding.EncodeToString([]byte(hash)))
	fmt.Fprintf(stdout, "# raw bcrypt hash: %s\n", hash)
	fmt.Fprintf(stdout, "JWT_SECRET=%s\n", secret)
	return nil
}

// totpSecret prints a new TOTP secret for ADMIN_TOTP_SECRET. An optional
// argument names the account shown in authenticator apps.
func totpSecret(args []string, stdout io.Writer) error {
	account := "admin"
	if len(args) > 0 && args[0] != "" {
		account = args[0]
	}

	secret, err := auth.GenerateTOTPSecret(account)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "ADMIN_TOTP_SECRET=%s\n", secret)
	fmt.Fprintln(stdout, "# after restarting, scan GET /admin/api/auth/totp.png while signed in")
	return nil
}
