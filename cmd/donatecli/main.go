package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/pennyfund/donate-gateway/internal/account"
	"github.com/pennyfund/donate-gateway/internal/chaincfg"
	"github.com/pennyfund/donate-gateway/internal/config"
	"github.com/pennyfund/donate-gateway/internal/donate"
	"github.com/pennyfund/donate-gateway/internal/gateway"
	"github.com/pennyfund/donate-gateway/internal/session"
)

func main() {
	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	ctx := context.Background()

	net := chaincfg.Load()
	cfg := config.Load()

	ec, err := ethclient.Dial(net.RPCURL)
	must(err, "dial RPC")
	chainID := net.ChainID()
	if chainID == nil {
		chainID, err = ec.ChainID(ctx)
		must(err, "chain id")
	}

	if !common.IsHexAddress(cfg.TokenAddress) {
		die("USDC_CONTRACT is not a valid address")
	}
	if !common.IsHexAddress(cfg.FeeContract) {
		die("FEE_CONTRACT is empty or invalid in env")
	}
	keyHex := cfg.WalletKeyHex
	if strings.TrimSpace(keyHex) == "" {
		keyHex = readPassword("Enter wallet private key: ")
	}

	fmt.Println("=== CONFIG (.env) ===")
	fmt.Println("Network           :", net.DisplayName)
	fmt.Println("RPC_URL           :", net.RPCURL)
	fmt.Println("CHAIN_ID          :", chainID.String())
	fmt.Println("USDC_CONTRACT     :", cfg.TokenAddress)
	fmt.Println("FEE_CONTRACT      :", cfg.FeeContract)
	fmt.Println("WALLET_PRIVATE_KEY:", maskHex(keyHex))
	fmt.Println("Fee rate          :", donate.FeeRate.String())
	fmt.Println("Confirm timeout   :", cfg.ConfirmTimeout)
	fmt.Println("=====================")

	provider := session.NewKeyedProvider(keyHex, chainID)
	manager := session.NewManager(provider)
	resolver := account.NewResolver(ec, common.HexToAddress(cfg.TokenAddress), cfg.TokenDecimals, cfg.CallRetries)
	engine := donate.NewEngine(ec, chainID, common.HexToAddress(cfg.FeeContract), cfg.TokenDecimals, cfg.GasBufferPct)
	engine.SetLogf(func(f string, a ...any) { fmt.Printf("  "+f+"\n", a...) })
	tracker := donate.NewTracker(ec, cfg.ConfirmTimeout, cfg.ReceiptInterval)
	tracker.SetLogf(func(f string, a ...any) { fmt.Printf("  "+f+"\n", a...) })

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	co := gateway.New(manager, resolver, engine, tracker, logger)

	must(co.Initialize(ctx), "initialize session")

	acct, err := co.Login(ctx)
	must(err, "login")
	fmt.Println("\nWallet address :", acct.Address)
	fmt.Println("USDC balance   :", acct.TokenBalance)

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println("\n--- Donate USDC (recipient -> amount) ---")

		to := readLine(reader, "Campaign address: ")
		if !common.IsHexAddress(to) {
			fmt.Println("  [!] not a valid address")
			continue
		}
		amountStr := readLine(reader, "Amount (USDC): ")
		principal, err := decimal.NewFromString(strings.TrimSpace(amountStr))
		if err != nil {
			fmt.Println("  [!] bad amount:", err)
			continue
		}
		fee, total := donate.ComputeFee(principal)
		fmt.Println("  Platform fee (5%):", fee.StringFixed(6), "USDC")
		fmt.Println("  Total amount     :", total.StringFixed(6), "USDC")

		if !yes(strings.ToLower(readLine(reader, "Send with platform fee? [y/N]: "))) {
			continue
		}
		res, err := co.Donate(ctx, donate.DonationRequest{Recipient: to, Principal: principal})
		if err != nil {
			fmt.Println("[ERROR]", err)
		} else {
			fmt.Println("[RESULT] state:", res.State, "| tx:", res.TxHash.Hex())
			fmt.Println("USDC balance   :", co.Account().TokenBalance)
		}

		again := strings.ToLower(readLine(reader, "Another donation? [y/N]: "))
		if again != "y" && again != "yes" {
			break
		}
	}

	_ = co.Logout(ctx)
}

func must(err error, msg string) {
	if err != nil {
		die(msg + ": " + err.Error())
	}
}

func die(msg string) { fmt.Fprintln(os.Stderr, msg); os.Exit(1) }

func maskHex(h string) string {
	h = strings.TrimSpace(h)
	if len(h) <= 10 {
		return "***"
	}
	return h[:6] + "…" + h[len(h)-4:]
}

func readLine(r *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	t, _ := r.ReadString('\n')
	return strings.TrimSpace(t)
}

func readPassword(prompt string) string {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		die("failed to read key: " + err.Error())
	}
	return strings.TrimSpace(string(b))
}

func yes(s string) bool { return s == "y" || s == "yes" }
