// authctl is a small terminal client for the auth service HTTP API. It
// covers the register, login, me and validate endpoints; passwords are read
// from the terminal without echo.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

const tokenEnvVar = "AUTHKIT_TOKEN"

func main() {
	addr := flag.String("addr", "http://localhost:8080", "base URL of the auth service")
	token := flag.String("token", "", "bearer token (defaults to $"+tokenEnvVar+")")
	flag.Parse()

	if *token == "" {
		*token = os.Getenv(tokenEnvVar)
	}

	c := &client{
		baseURL: strings.TrimRight(*addr, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}

	var err error
	switch flag.Arg(0) {
	case "register":
		err = c.register()
	case "login":
		err = c.login()
	case "me":
		err = c.me(*token)
	case "validate":
		err = c.validate(*token)
	case "health":
		err = c.health()
	default:
		fmt.Fprintln(os.Stderr, "usage: authctl [-addr URL] [-token TOKEN] register|login|me|validate|health")
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type client struct {
	baseURL string
	http    *http.Client
}

func (c *client) register() error {
	reader := bufio.NewReader(os.Stdin)

	username, err := readLine(reader, "Enter username")
	if err != nil {
		return err
	}
	email, err := readLine(reader, "Enter email")
	if err != nil {
		return err
	}
	password, err := readPassword()
	if err != nil {
		return err
	}

	return c.post("/register", map[string]string{
		"username": username,
		"email":    email,
		"password": string(password),
	})
}

func (c *client) login() error {
	reader := bufio.NewReader(os.Stdin)

	email, err := readLine(reader, "Enter email")
	if err != nil {
		return err
	}
	password, err := readPassword()
	if err != nil {
		return err
	}

	return c.post("/login", map[string]string{
		"email":    email,
		"password": string(password),
	})
}

func (c *client) me(token string) error {
	if token == "" {
		return fmt.Errorf("no token: pass -token or set $%s", tokenEnvVar)
	}

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/me", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(req)
}

func (c *client) validate(token string) error {
	if token == "" {
		return fmt.Errorf("no token: pass -token or set $%s", tokenEnvVar)
	}
	return c.post("/validate", map[string]string{"token": token})
}

func (c *client) health() error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	return c.do(req)
}

func (c *client) post(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// do executes the request and pretty-prints the JSON response to stdout.
func (c *client) do(req *http.Request) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		pretty.Write(body)
	}

	fmt.Printf("%s\n%s\n", resp.Status, pretty.String())
	return nil
}

func readLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Println(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func readPassword() ([]byte, error) {
	fmt.Print("Enter password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, err
	}
	return password, nil
}
