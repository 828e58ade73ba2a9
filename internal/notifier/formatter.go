package notifier

import (
	"fmt"
	"html"
	"strings"

	"SignalDesk/internal/dashboard"
	"SignalDesk/internal/model"
	"SignalDesk/internal/strategy"
)

const noSetupText = "Waiting for clear setups..."

func coinTitle(c *model.CoinData) string {
	if c == nil {
		return "?"
	}
	return fmt.Sprintf("%s (%s)", html.EscapeString(c.Name), strings.ToUpper(c.Symbol))
}

// FormatSignal renders a signal card. NEUTRAL signals render as a
// "no setup" notice without levels.
func FormatSignal(view *dashboard.SignalView) string {
	var b strings.Builder
	sig := view.Signal

	b.WriteString(fmt.Sprintf("📡 <b>%s</b> | %s\n", coinTitle(view.Coin), sig.TierLabel))
	if view.Placeholder {
		b.WriteString("⚠️ <i>Live data unavailable, showing placeholder values</i>\n")
	}
	b.WriteString(fmt.Sprintf("Price: %s (%+.2f%%)\n",
		priceString(view.Coin.CurrentPrice, sig.Precision), view.Coin.PriceChangePercentage24h))
	b.WriteString(fmt.Sprintf("RSI(14): %.1f %s\n\n", sig.OscillatorValue, sig.OscillatorStatus))

	if !sig.Actionable() {
		b.WriteString(noSetupText)
		return b.String()
	}

	icon := "🔴"
	if sig.Direction.IsLong() {
		icon = "🟢"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s</b> %gx %s\n", icon, sig.Direction, sig.Leverage, sig.LeverageMode))
	b.WriteString(fmt.Sprintf("%s\n\n", sig.TimeframeLabel))
	b.WriteString(fmt.Sprintf("Entry: <code>%s</code>\n", sig.EntryZone()))
	b.WriteString(fmt.Sprintf("TP1: <code>%s</code> | TP2: <code>%s</code>\n",
		sig.TakeProfit1.StringFixed(sig.Precision), sig.TakeProfit2.StringFixed(sig.Precision)))
	b.WriteString(fmt.Sprintf("SL: <code>%s</code>\n", sig.StopLoss.StringFixed(sig.Precision)))
	b.WriteString(fmt.Sprintf("R:R %s | Risk -%s%% | Reward +%s%%\n",
		sig.RiskRewardLabel, sig.EstimatedLossPct.StringFixed(sig.PercentPrecision), sig.EstimatedGainPct.StringFixed(sig.PercentPrecision)))

	ov := view.Overview
	if ov.SampleCount > 0 {
		b.WriteString(fmt.Sprintf("\n7d range: %s - %s (at %.0f%%)\n",
			priceString(ov.Low7d, sig.Precision), priceString(ov.High7d, sig.Precision), ov.Position7d*100))
	}
	return b.String()
}

func priceString(v float64, precision int32) string {
	return fmt.Sprintf("%.*f", precision, v)
}

// FormatMarkets renders the top of the market listing.
func FormatMarkets(coins []model.CoinData, limit int) string {
	if len(coins) == 0 {
		return "📊 Market data is unavailable right now."
	}
	if limit > 0 && len(coins) > limit {
		coins = coins[:limit]
	}
	var b strings.Builder
	b.WriteString("📊 <b>Top markets</b>\n\n")
	for i := range coins {
		c := &coins[i]
		b.WriteString(fmt.Sprintf("%d. %s %s (%+.2f%%)\n",
			i+1, strings.ToUpper(c.Symbol), priceString(c.CurrentPrice, strategy.PricePrecision(c.CurrentPrice)), c.PriceChangePercentage24h))
	}
	return b.String()
}

// FormatNews renders headlines as links.
func FormatNews(items []model.NewsItem) string {
	if len(items) == 0 {
		return "📰 No news available right now."
	}
	var b strings.Builder
	b.WriteString("📰 <b>Latest news</b>\n\n")
	for _, n := range items {
		b.WriteString(fmt.Sprintf("• <a href=\"%s\">%s</a> <i>%s</i>\n",
			html.EscapeString(n.URL), html.EscapeString(n.Title), html.EscapeString(n.Source)))
	}
	return b.String()
}

// FormatPrefs renders the caller's selection.
func FormatPrefs(p model.Preferences) string {
	var b strings.Builder
	b.WriteString("⚙️ <b>Preferences</b>\n\n")
	b.WriteString(fmt.Sprintf("Risk tier: %s\n", p.Tier))
	if len(p.Watchlist) == 0 {
		b.WriteString("Watchlist: (empty)\n")
	} else {
		b.WriteString(fmt.Sprintf("Watchlist: %s\n", strings.Join(p.Watchlist, ", ")))
	}
	if !p.UpdatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Updated: %s\n", p.UpdatedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}

// FormatDirectionChange prefixes a signal card with the transition that
// triggered it.
func FormatDirectionChange(from model.Direction, view *dashboard.SignalView) string {
	if from == "" {
		return FormatSignal(view)
	}
	return fmt.Sprintf("🔄 %s → %s\n\n%s", from, view.Signal.Direction, FormatSignal(view))
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return strings.Join([]string{
		"Available commands:",
		"• /signal &lt;coin&gt; [tier]",
		"• /tier &lt;LOW|MEDIUM|HIGH|EXTREME&gt;",
		"• /watch &lt;coin&gt;",
		"• /unwatch &lt;coin&gt;",
		"• /markets",
		"• /news",
		"• /prefs",
	}, "\n")
}
