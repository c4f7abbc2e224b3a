package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

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

	a := app.New()
	w := a.NewWindow("PennyFundMe")
	w.Resize(fyne.NewSize(520, 640))

	net := chaincfg.Load()
	cfg := config.Load()

	co, err := buildCoordinator(net, cfg)
	if err != nil {
		// show the init failure instead of a broken main view
		w.SetContent(container.NewCenter(widget.NewLabel("Setup failed: " + err.Error())))
		w.ShowAndRun()
		return
	}

	showLoginView(w, net, co)
	w.ShowAndRun()
}

func buildCoordinator(net chaincfg.Network, cfg config.Settings) (*gateway.Coordinator, error) {
	ec, err := ethclient.Dial(net.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	chainID := net.ChainID()
	if chainID == nil {
		if chainID, err = ec.ChainID(context.Background()); err != nil {
			return nil, fmt.Errorf("chain id: %w", err)
		}
	}
	if !common.IsHexAddress(cfg.TokenAddress) || !common.IsHexAddress(cfg.FeeContract) {
		return nil, fmt.Errorf("USDC_CONTRACT / FEE_CONTRACT missing or invalid in env")
	}

	provider := session.NewKeyedProvider(cfg.WalletKeyHex, chainID)
	manager := session.NewManager(provider)
	resolver := account.NewResolver(ec, common.HexToAddress(cfg.TokenAddress), cfg.TokenDecimals, cfg.CallRetries)
	engine := donate.NewEngine(ec, chainID, common.HexToAddress(cfg.FeeContract), cfg.TokenDecimals, cfg.GasBufferPct)
	tracker := donate.NewTracker(ec, cfg.ConfirmTimeout, cfg.ReceiptInterval)

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	co := gateway.New(manager, resolver, engine, tracker, logger)
	if err := co.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return co, nil
}

func showLoginView(w fyne.Window, net chaincfg.Network, co *gateway.Coordinator) {
	status := widget.NewLabel("Network: " + net.DisplayName)
	loginBtn := widget.NewButton("Login", nil)
	loginBtn.OnTapped = func() {
		loginBtn.Disable()
		status.SetText("Connecting…")
		go func() {
			_, err := co.Login(context.Background())
			if err != nil {
				loginBtn.Enable()
				status.SetText("Login failed")
				dialog.ShowError(err, w)
				return
			}
			showWalletView(w, net, co)
		}()
	}
	title := widget.NewLabelWithStyle("PennyFundMe", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	w.SetContent(container.NewCenter(container.NewVBox(title, status, loginBtn)))
}

func showWalletView(w fyne.Window, net chaincfg.Network, co *gateway.Coordinator) {
	acct := co.Account()

	addrEntry := widget.NewEntry()
	addrEntry.SetText(acct.Address)
	addrEntry.Disable()
	copyBtn := widget.NewButton("Copy Address", func() {
		w.Clipboard().SetContent(addrEntry.Text)
	})
	balanceLbl := widget.NewLabelWithStyle(acct.TokenBalance+" USDC", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	overviewCard := widget.NewCard("Wallet Overview", net.DisplayName, container.NewVBox(
		widget.NewLabel("Wallet Address:"), addrEntry, copyBtn,
		widget.NewLabel("USDC Balance:"), balanceLbl,
	))

	recipientEntry := widget.NewEntry()
	recipientEntry.SetPlaceHolder("0x…")
	amountEntry := widget.NewEntry()
	amountEntry.SetPlaceHolder("0.00")
	feeLbl := widget.NewLabel("Platform Fee (5%): 0.000000 USDC")
	totalLbl := widget.NewLabel("Total Amount: 0.000000 USDC")
	sendBtn := widget.NewButton("Send USDC with Platform Fee", nil)
	sendBtn.Disable()

	recompute := func() {
		principal, err := decimal.NewFromString(strings.TrimSpace(amountEntry.Text))
		if err != nil || principal.Sign() <= 0 {
			feeLbl.SetText("Platform Fee (5%): 0.000000 USDC")
			totalLbl.SetText("Total Amount: 0.000000 USDC")
			sendBtn.Disable()
			return
		}
		fee, total := donate.ComputeFee(principal)
		feeLbl.SetText("Platform Fee (5%): " + fee.StringFixed(6) + " USDC")
		totalLbl.SetText("Total Amount: " + total.StringFixed(6) + " USDC")
		if common.IsHexAddress(strings.TrimSpace(recipientEntry.Text)) {
			sendBtn.Enable()
		} else {
			sendBtn.Disable()
		}
	}
	amountEntry.OnChanged = func(string) { recompute() }
	recipientEntry.OnChanged = func(string) { recompute() }

	sendBtn.OnTapped = func() {
		principal, err := decimal.NewFromString(strings.TrimSpace(amountEntry.Text))
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		req := donate.DonationRequest{Recipient: strings.TrimSpace(recipientEntry.Text), Principal: principal}
		sendBtn.Disable()
		prog := dialog.NewProgressInfinite("Sending", "Waiting for confirmation…", w)
		prog.Show()
		go func() {
			res, err := co.Donate(context.Background(), req)
			prog.Hide()
			recompute()
			if err != nil {
				dialog.ShowError(err, w)
				// the form stays usable for a corrected retry
				return
			}
			balanceLbl.SetText(co.Account().TokenBalance + " USDC")
			dialog.ShowInformation("Donation sent", "Confirmed: "+res.TxHash.Hex(), w)
		}()
	}

	donateCard := widget.NewCard("Donate USDC", "", container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Campaign Address", recipientEntry),
			widget.NewFormItem("Amount (USDC)", amountEntry),
		),
		feeLbl, totalLbl, sendBtn,
	))

	logoutBtn := widget.NewButton("Logout", func() {
		go func() {
			_ = co.Logout(context.Background())
			showLoginView(w, net, co)
		}()
	})
	buyBtn := widget.NewButton("Buy USDC", func() {
		dialog.ShowInformation("Buy USDC", "Not available for now, on testnet", w)
	})

	w.SetContent(container.NewVBox(
		overviewCard,
		donateCard,
		container.NewGridWithColumns(2, logoutBtn, buyBtn),
	))
}
