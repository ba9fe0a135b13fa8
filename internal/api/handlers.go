package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/prizetable"
	"spin-rewards/internal/spin"
)

// defaultDistributionWindow is used when from is omitted.
const defaultDistributionWindow = 24 * time.Hour

type registerRequest struct {
	Wallet    string `json:"wallet" validate:"required,sui_address"`
	PublicKey string `json:"public_key,omitempty"`
	Referrer  string `json:"referrer,omitempty" validate:"omitempty,sui_address"`
}

type spinRequest struct {
	Wallet string `json:"wallet" validate:"required,sui_address"`
}

type purchaseRequest struct {
	Wallet string `json:"wallet" validate:"required,sui_address"`
	Digest string `json:"digest" validate:"required,sui_digest"`
}

type userView struct {
	Wallet           string          `json:"wallet"`
	SpinBalance      int64           `json:"spin_balance"`
	TokenBalance     decimal.Decimal `json:"token_balance"`
	Referrer         *string         `json:"referrer,omitempty"`
	LastDailyGrantAt *time.Time      `json:"last_daily_grant_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	Created          bool            `json:"created,omitempty"`
}

func newUserView(u *domain.User) userView {
	return userView{
		Wallet:           u.WalletAddress,
		SpinBalance:      u.SpinBalance,
		TokenBalance:     u.TokenBalance,
		Referrer:         u.ReferrerWallet,
		LastDailyGrantAt: u.LastDailyGrantAt,
		CreatedAt:        u.CreatedAt,
	}
}

type spinView struct {
	SpinID       string               `json:"spin_id"`
	Wallet       string               `json:"wallet"`
	SlotIndex    int                  `json:"slot_index"`
	PrizeType    domain.PrizeType     `json:"prize_type"`
	Amount       decimal.Decimal      `json:"amount"`
	ValueUSD     decimal.Decimal      `json:"value_usd"`
	LockDuration *domain.LockDuration `json:"lock_duration,omitempty"`
	Win          bool                 `json:"win"`
	SeedHash     string               `json:"seed_hash"`
	RandomValue  float64              `json:"random_value"`
	TableVersion int64                `json:"table_version"`
	Referrer     *string              `json:"referrer,omitempty"`
	Commission   decimal.Decimal      `json:"commission"`
	CreatedAt    time.Time            `json:"created_at"`
}

func newSpinView(s *domain.Spin) spinView {
	return spinView{
		SpinID:       s.SpinID,
		Wallet:       s.WalletAddress,
		SlotIndex:    s.SlotIndex,
		PrizeType:    s.PrizeType,
		Amount:       s.Amount,
		ValueUSD:     s.ValueUSD,
		LockDuration: s.LockDuration,
		Win:          s.IsWin(),
		SeedHash:     s.SeedHash,
		RandomValue:  s.RandomValue,
		TableVersion: s.TableVersion,
		Referrer:     s.ReferrerWallet,
		Commission:   s.CommissionAmount,
		CreatedAt:    s.CreatedAt,
	}
}

type spinOutcomeView struct {
	Spin           spinView        `json:"spin"`
	RemainingSpins int64           `json:"remaining_spins"`
	TokenBalance   decimal.Decimal `json:"token_balance"`
}

type purchaseView struct {
	PurchaseID    string          `json:"purchase_id"`
	Digest        string          `json:"digest"`
	AmountMist    decimal.Decimal `json:"amount_mist"`
	SpinsCredited int64           `json:"spins_credited"`
	SpinBalance   int64           `json:"spin_balance"`
}

type prizesView struct {
	Version   int64                   `json:"version"`
	UpdatedAt time.Time               `json:"updated_at"`
	Slots     []prizetable.SlotChance `json:"slots"`
}

type distributionView struct {
	From   time.Time          `json:"from"`
	To     time.Time          `json:"to"`
	Total  int64              `json:"total"`
	Counts []domain.SlotCount `json:"counts"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	u, created, err := s.svc.RegisterWallet(r.Context(), spin.RegisterRequest{
		Wallet:    req.Wallet,
		PublicKey: req.PublicKey,
		Referrer:  req.Referrer,
	})
	if err != nil {
		s.fail(w, r, "api.register", err)
		return
	}

	view := newUserView(u)
	view.Created = created
	if created {
		resp := OK(view)
		resp.Status = http.StatusCreated
		reply(w, r, resp)
		return
	}
	render.JSON(w, r, OK(view))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.GetUser(r.Context(), chi.URLParam(r, "wallet"))
	if err != nil {
		s.fail(w, r, "api.get_user", err)
		return
	}
	render.JSON(w, r, OK(newUserView(u)))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			reply(w, r, Error("limit must be a non-negative integer", http.StatusBadRequest))
			return
		}
		limit = n
	}

	spins, err := s.svc.History(r.Context(), chi.URLParam(r, "wallet"), limit)
	if err != nil {
		s.fail(w, r, "api.history", err)
		return
	}

	views := make([]spinView, len(spins))
	for i, sp := range spins {
		views[i] = newSpinView(sp)
	}
	render.JSON(w, r, OK(views))
}

func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	var req spinRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := s.svc.Spin(r.Context(), req.Wallet)
	if err != nil {
		s.fail(w, r, "api.spin", err)
		return
	}

	render.JSON(w, r, OK(spinOutcomeView{
		Spin:           newSpinView(out.Spin),
		RemainingSpins: out.RemainingSpins,
		TokenBalance:   out.TokenBalance,
	}))
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := s.svc.CreditPurchase(r.Context(), req.Wallet, req.Digest)
	if err != nil {
		s.fail(w, r, "api.purchase", err)
		return
	}

	render.JSON(w, r, OK(purchaseView{
		PurchaseID:    out.Purchase.PurchaseID,
		Digest:        out.Purchase.TxDigest,
		AmountMist:    out.Purchase.AmountMist,
		SpinsCredited: out.Purchase.SpinsCredited,
		SpinBalance:   out.SpinBalance,
	}))
}

func (s *Server) handlePrizes(w http.ResponseWriter, r *http.Request) {
	table, chances, err := s.svc.Prizes(r.Context())
	if err != nil {
		s.fail(w, r, "api.prizes", err)
		return
	}
	render.JSON(w, r, OK(prizesView{
		Version:   table.Version,
		UpdatedAt: table.UpdatedAt,
		Slots:     chances,
	}))
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.VerifySpin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "api.verify", err)
		return
	}
	render.JSON(w, r, OK(v))
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	to := s.now().UTC()
	from := to.Add(-defaultDistributionWindow)

	var err error
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = time.Parse(time.RFC3339, raw); err != nil {
			reply(w, r, Error("to must be an RFC3339 timestamp", http.StatusBadRequest))
			return
		}
		from = to.Add(-defaultDistributionWindow)
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = time.Parse(time.RFC3339, raw); err != nil {
			reply(w, r, Error("from must be an RFC3339 timestamp", http.StatusBadRequest))
			return
		}
	}
	if from.After(to) {
		reply(w, r, Error("from must not be after to", http.StatusBadRequest))
		return
	}

	counts, err := s.svc.Distribution(r.Context(), from, to)
	if err != nil {
		s.fail(w, r, "api.distribution", err)
		return
	}

	var total int64
	for _, c := range counts {
		total += c.Count
	}
	render.JSON(w, r, OK(distributionView{From: from, To: to, Total: total, Counts: counts}))
}
