package analyst

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"persona-service/internal/dashboard"
	"persona-service/internal/linguistics"
	"persona-service/internal/models"
)

// Knowledge is the snapshot the local responder answers from.
type Knowledge struct {
	Personas      []models.ScammerProfile
	Conversations []models.ConversationLog
	Now           time.Time
}

const HelpText = "I can help you analyze scammer personas, identify patterns, find similar cases, and generate reports.\n\n" +
	"**Try asking:**\n" +
	"- \"How many crypto scammers last month?\"\n" +
	"- \"Count all romance scammers\"\n" +
	"- \"What platforms are most targeted?\"\n" +
	"- \"Generate executive report\"\n" +
	"- \"What is a charity scam?\""

const scamTypeHelp = "I can help you understand different scam types. Try asking about:\n" +
	"- \"What is a charity scam?\"\n" +
	"- \"Tell me about romance scams\"\n" +
	"- \"Explain investment scams\"\n" +
	"- \"What are job scams?\""

const redFlags = "**Common Red Flags Detected:**\n\n" +
	"1. **Urgency tactics** - \"Act now\", \"Limited time\"\n" +
	"2. **Emotional manipulation** - Building trust quickly\n" +
	"3. **Money requests** - Asking for upfront payments\n" +
	"4. **Too good to be true** - Unrealistic promises\n" +
	"5. **Poor grammar** - Inconsistent language use\n" +
	"6. **Verification avoidance** - Refusing video calls or meetings"

var scamTypeDescriptions = map[string]string{
	"charity":     "Charity scams involve fake charitable organizations or causes. Scammers exploit people's desire to help others, often using emotional manipulation and fake credentials to solicit donations.",
	"romance":     "Romance scams target people looking for love online. Scammers build fake relationships over time, then request money for emergencies, travel, or other fabricated needs.",
	"job":         "Job scams promise employment opportunities but require upfront fees, personal information, or payment for \"training\" or \"equipment\". Often target unemployed or job seekers.",
	"investment":  "Investment scams promise high returns with low risk. Scammers use fake credentials, testimonials, and pressure tactics to convince victims to invest in non-existent opportunities.",
	"crypto":      "Cryptocurrency scams involve fake trading platforms, investment schemes, or wallet scams. Victims are lured with promises of quick profits or \"guaranteed\" returns.",
	"phishing":    "Phishing scams impersonate legitimate organizations (banks, government, companies) to steal personal information, login credentials, or financial data through fake websites or emails.",
	"lottery":     "Lottery scams claim the victim has won a prize but must pay fees or taxes to claim it. Often involves fake official documents and urgent deadlines.",
	"nigerian":    "Nigerian Prince scams (advance fee fraud) claim large sums of money are trapped and need help to be released. Victims are asked to pay fees upfront with promises of huge returns.",
	"advance fee": "Advance fee scams require victims to pay money upfront before receiving a promised benefit (inheritance, prize, job, loan). The benefit never materializes.",
	"product":     "Product scams sell fake or non-existent items, often at too-good-to-be-true prices. Victims pay but never receive the product or receive counterfeit goods.",
}

var (
	conversationRef = regexp.MustCompile(`conv_\d+`)
	scamTypeRef     = regexp.MustCompile(`charity|romance|job|investment|crypto|phishing|lottery|nigerian|advance fee|product`)
)

// LocalAnswer answers a query from the snapshot by keyword dispatch. An
// unmatched query yields ("", false) so the caller can prefer a remote answer.
func LocalAnswer(query, personaID string, kb Knowledge) (string, bool) {
	q := strings.ToLower(query)

	switch {
	case strings.Contains(q, "how many") || strings.Contains(q, "count"):
		return countAnswer(q, kb), true
	case strings.Contains(q, "last month") || strings.Contains(q, "past month"):
		return lastMonthAnswer(kb), true
	case strings.Contains(q, "crew") || strings.Contains(q, "network"):
		return crewAnswer(kb), true
	case strings.Contains(q, "platform"):
		return platformAnswer(kb), true
	case strings.Contains(q, "conv_") || strings.Contains(q, "conversation"):
		return conversationAnswer(q, kb), true
	}

	if strings.Contains(q, "summarize") {
		if p, ok := findPersona(kb.Personas, personaID); ok {
			return summaryAnswer(p, kb), true
		}
	}

	switch {
	case strings.Contains(q, "red flag"):
		return redFlags, true
	case strings.Contains(q, "similar"):
		return similarAnswer(personaID, kb), true
	case strings.Contains(q, "report") || strings.Contains(q, "executive"):
		return reportAnswer(kb), true
	case strings.Contains(q, "what") || strings.Contains(q, "explain") || strings.Contains(q, "tell me about"):
		return scamTypeAnswer(q, kb), true
	}
	return "", false
}

func countAnswer(q string, kb Knowledge) string {
	switch {
	case strings.Contains(q, "crypto") || strings.Contains(q, "investment"):
		crypto := filter(kb.Personas, func(p models.ScammerProfile) bool {
			t := strings.ToLower(p.Type)
			return strings.Contains(t, "investment") || strings.Contains(t, "crypto") || anyContains(p.Keywords, "crypto")
		})
		recent := filter(crypto, func(p models.ScammerProfile) bool { return seenSince(p, kb.Now.AddDate(0, -1, 0)) })

		var b strings.Builder
		fmt.Fprintf(&b, "**Crypto/Investment Scammer Analysis:**\n\n**Total Crypto/Investment Scammers:** %d\n", len(crypto))
		names := make([]string, len(crypto))
		for i, p := range crypto {
			names[i] = fmt.Sprintf("%s (%s)", p.Name, p.ID)
		}
		fmt.Fprintf(&b, "- %s\n\n**Active Last Month:** %d\n", strings.Join(names, ", "), len(recent))
		if len(recent) == 0 {
			b.WriteString("- None detected\n")
		}
		for _, p := range recent {
			fmt.Fprintf(&b, "- %s: %d conversations, Risk %s\n", p.Name, p.Conversations, risk(p.RiskScore))
		}
		fmt.Fprintf(&b, "\n**Insights:**\n- Average risk score: %s\n- Total conversations: %d\n- Most active: %s",
			avgRisk(crypto), totalConversations(crypto), mostActive(crypto))
		return b.String()

	case strings.Contains(q, "romance"):
		romance := filter(kb.Personas, func(p models.ScammerProfile) bool {
			return strings.Contains(strings.ToLower(p.Type), "romance") ||
				strings.Contains(strings.ToLower(p.Name), "romance") ||
				anyContains(p.Keywords, "romance") || anyContains(p.Keywords, "love")
		})
		if len(romance) == 0 {
			return "**Romance Scammer Count:** 0\n\nNo romance scammers found"
		}
		return fmt.Sprintf("**Romance Scammer Count:** %d\n\n%s", len(romance), personaLines(romance))

	case strings.Contains(q, "job") || strings.Contains(q, "recruiter"):
		jobs := filter(kb.Personas, func(p models.ScammerProfile) bool {
			return strings.Contains(strings.ToLower(p.Type), "job")
		})
		return fmt.Sprintf("**Job Scam Count:** %d\n\n%s", len(jobs), personaLines(jobs))

	default:
		var b strings.Builder
		fmt.Fprintf(&b, "**Total Scammer Personas:** %d\n\n**Breakdown by Type:**", len(kb.Personas))
		for _, e := range tally(kb.Personas, func(p models.ScammerProfile) ([]string, int) { return []string{p.Type}, 1 }) {
			fmt.Fprintf(&b, "\n- %s: %d", e.key, e.count)
		}
		return b.String()
	}
}

func lastMonthAnswer(kb Knowledge) string {
	recent := filter(kb.Personas, func(p models.ScammerProfile) bool { return seenSince(p, kb.Now.AddDate(0, -1, 0)) })

	var b strings.Builder
	fmt.Fprintf(&b, "**Activity Last Month:**\n\n**Active Personas:** %d out of %d\n\n**Recently Active:**", len(recent), len(kb.Personas))
	for _, p := range recent {
		fmt.Fprintf(&b, "\n- **%s** (%s): Last seen %s, %d conversations, Risk %s", p.Name, p.Type, p.LastSeen, p.Conversations, risk(p.RiskScore))
	}
	fmt.Fprintf(&b, "\n\n**Trends:**\n- Total conversations last month: %d\n- Average risk score: %s\n- Active platforms: %s",
		totalConversations(recent), avgRiskOrZero(recent), strings.Join(dashboard.Compute(recent).Platforms, ", "))
	return b.String()
}

func crewAnswer(kb Knowledge) string {
	crews := make(map[string][]models.ScammerProfile)
	var order []string
	for _, p := range kb.Personas {
		crew := p.CrewID
		if crew == "" {
			crew = "Independent"
		}
		if _, ok := crews[crew]; !ok {
			order = append(order, crew)
		}
		crews[crew] = append(crews[crew], p)
	}

	sections := make([]string, 0, len(order))
	largest, largestSize := "N/A", 0
	for _, crew := range order {
		members := crews[crew]
		lines := make([]string, len(members))
		for i, p := range members {
			lines[i] = fmt.Sprintf("- %s (%s): %s, Risk %s", p.Name, p.ID, p.Type, risk(p.RiskScore))
		}
		sections = append(sections, fmt.Sprintf("**%s:** %d members\n%s", crew, len(members), strings.Join(lines, "\n")))
		if len(members) > largestSize {
			largest, largestSize = crew, len(members)
		}
	}

	return fmt.Sprintf("**Criminal Crew Analysis:**\n\n%s\n\n**Insights:**\n- Total crews: %d\n- Largest crew: %s (%d members)",
		strings.Join(sections, "\n\n"), len(order), largest, largestSize)
}

func platformAnswer(kb Knowledge) string {
	counts := tally(kb.Personas, func(p models.ScammerProfile) ([]string, int) { return p.Platform, 1 })

	var b strings.Builder
	b.WriteString("**Platform Distribution:**\n")
	for _, e := range counts {
		suffix := ""
		if e.count > 1 {
			suffix = "s"
		}
		fmt.Fprintf(&b, "\n- **%s**: %d scammer%s", e.key, e.count, suffix)
	}
	top := "N/A"
	if len(counts) > 0 {
		top = counts[0].key
	}
	fmt.Fprintf(&b, "\n\n**Most Targeted Platform:** %s", top)
	return b.String()
}

func conversationAnswer(q string, kb Knowledge) string {
	ref := conversationRef.FindString(q)
	if ref == "" {
		var b strings.Builder
		b.WriteString("**Conversation Analysis Help:**\n\nTo analyze a specific conversation, mention the conversation ID like:\n")
		b.WriteString("- \"Tell me about conversation conv_0\"\n- \"Analyze conv_1\"\n- \"What happened in conv_2\"\n\n")
		fmt.Fprintf(&b, "**Available conversations:** %d total", len(kb.Conversations))
		for i, c := range kb.Conversations {
			if i == 5 {
				b.WriteString("\n...")
				break
			}
			fmt.Fprintf(&b, "\n- %s (%s, %s)", c.ID, c.Classification, c.Platform)
		}
		return b.String()
	}

	var conv *models.ConversationLog
	for i := range kb.Conversations {
		if strings.EqualFold(kb.Conversations[i].ID, ref) {
			conv = &kb.Conversations[i]
			break
		}
	}
	if conv == nil {
		ids := make([]string, 0, 10)
		for i, c := range kb.Conversations {
			if i == 10 {
				break
			}
			ids = append(ids, c.ID)
		}
		more := ""
		if len(kb.Conversations) > 10 {
			more = "..."
		}
		return fmt.Sprintf("**Conversation not found:** %s\n\nAvailable conversations: %s%s", ref, strings.Join(ids, ", "), more)
	}

	persona, found := findPersona(kb.Personas, conv.ScammerID)
	personaName, personaType, personaRisk := "Unknown", "Unknown", "Unknown"
	if found {
		personaName, personaType, personaRisk = persona.Name, persona.Type, risk(persona.RiskScore)
	}

	scammer := models.ScammerMessages(conv.Messages)
	victims := 0
	for _, m := range conv.Messages {
		if m.Sender == models.SenderVictim {
			victims++
		}
	}
	words := 0
	for _, m := range scammer {
		words += len(strings.Fields(m.Text))
	}
	avgWords := 0
	if len(scammer) > 0 {
		avgWords = int(math.Round(float64(words) / float64(len(scammer))))
	}

	phrases := make([]string, 0, 3)
	for _, m := range scammer[:min(3, len(scammer))] {
		phrases = append(phrases, `"`+linguistics.Prefix(m.Text, 50)+`..."`)
	}

	var recommendation string
	switch conv.Outcome {
	case models.OutcomeSuccess:
		recommendation = "Victim may have been scammed - investigate immediately"
	case models.OutcomeFailed:
		recommendation = "Scam attempt failed"
	default:
		recommendation = "Ongoing - monitor closely"
	}

	return fmt.Sprintf("**Conversation Analysis: %s**\n\n**Overview:**\n"+
		"- **Persona:** %s (%s)\n- **Platform:** %s\n- **Outcome:** %s\n- **Classification:** %s\n"+
		"- **Total Messages:** %d (%d scammer, %d victim)\n- **Duration:** %s\n\n"+
		"**Content Analysis:**\n- **Average message length:** %d words\n- **Red flags detected:** %d (%s)\n- **Key phrases:** %s\n\n"+
		"**Risk Assessment:** %s/100\n**Recommendation:** %s",
		conv.ID, personaName, personaType, conv.Platform, conv.Outcome, conv.Classification,
		len(conv.Messages), len(scammer), victims, duration(conv.StartTime, conv.EndTime),
		avgWords, len(conv.Flags), strings.Join(conv.Flags, ", "), strings.Join(phrases, ", "),
		personaRisk, recommendation)
}

func summaryAnswer(p models.ScammerProfile, kb Knowledge) string {
	var total, success, failed, ongoing int
	for _, c := range kb.Conversations {
		if c.ScammerID != p.ID {
			continue
		}
		total++
		switch c.Outcome {
		case models.OutcomeSuccess:
			success++
		case models.OutcomeFailed:
			failed++
		case models.OutcomeOngoing:
			ongoing++
		}
	}

	phrase := func(i int) string {
		if i < len(p.CommonPhrases) {
			return p.CommonPhrases[i]
		}
		return "N/A"
	}
	primaryPlatform := "N/A"
	if len(p.Platform) > 0 {
		primaryPlatform = p.Platform[0]
	}

	return fmt.Sprintf("**%s** is a %s-type scammer with a risk score of %s/100.\n\n"+
		"**Key Characteristics:**\n- Active during %s\n- Operates on: %s\n- Tone: %s\n- Uses phrases like: \"%s\", \"%s\"\n\n"+
		"**Conversation Stats:**\n- Total conversations: %d\n- Successful scams: %d\n- Failed attempts: %d\n- Ongoing: %d\n\n"+
		"**Recommendations:**\n- Monitor for similar patterns on %s\n- Flag messages containing keywords: %s\n- High-risk engagement detected in %d conversations",
		p.Name, strings.ToLower(p.Type), risk(p.RiskScore),
		p.ActiveHours, strings.Join(p.Platform, ", "), p.Tone, phrase(0), phrase(1),
		total, success, failed, ongoing,
		primaryPlatform, strings.Join(p.Keywords[:min(3, len(p.Keywords))], ", "), p.Conversations)
}

// similarAnswer ranks other personas by shared type, crew, platforms and
// keywords relative to the selected persona.
func similarAnswer(personaID string, kb Knowledge) string {
	target, ok := findPersona(kb.Personas, personaID)
	if !ok {
		return "Found similar personas with matching behavioral patterns:\n\n**Similarity Analysis:**\n" +
			"- Pattern matching based on communication style\n- Shared tactics and keywords\n- Temporal activity overlap\n\n" +
			"Select a persona to rank its closest matches."
	}

	type match struct {
		p     models.ScammerProfile
		score int
	}
	var matches []match
	for _, p := range kb.Personas {
		if p.ID == target.ID {
			continue
		}
		score := 0
		if p.Type == target.Type {
			score += 40
		}
		if p.CrewID != "" && p.CrewID == target.CrewID {
			score += 30
		}
		score += 10 * overlap(p.Platform, target.Platform)
		score += 5 * overlap(p.Keywords, target.Keywords)
		if d := p.PeakHour - target.PeakHour; d >= -2 && d <= 2 {
			score += 10
		}
		matches = append(matches, match{p: p, score: min(100, score)})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	matches = matches[:min(3, len(matches))]

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d personas with similar behavioral patterns to **%s**:", len(matches), target.Name)
	for i, m := range matches {
		fmt.Fprintf(&b, "\n\n**%d. %s** (Similarity: %d%%)\n- %s, Risk %s\n- Platforms: %s",
			i+1, m.p.Name, m.score, m.p.Type, risk(m.p.RiskScore), strings.Join(m.p.Platform, ", "))
	}
	return b.String()
}

func reportAnswer(kb Knowledge) string {
	if len(kb.Personas) == 0 {
		return "**THREAT INTELLIGENCE REPORT**\n\nNo scammer personas loaded."
	}

	minRisk, maxRisk := math.Inf(1), math.Inf(-1)
	for _, p := range kb.Personas {
		minRisk = math.Min(minRisk, p.RiskScore)
		maxRisk = math.Max(maxRisk, p.RiskScore)
	}

	high := filter(kb.Personas, func(p models.ScammerProfile) bool { return p.RiskScore >= dashboard.HighRiskThreshold })
	sort.SliceStable(high, func(i, j int) bool { return high[i].RiskScore > high[j].RiskScore })
	threats := make([]string, len(high))
	for i, p := range high {
		threats[i] = fmt.Sprintf("- %s (%s): Risk %s", p.Type, p.Name, risk(p.RiskScore))
	}

	byType := tally(kb.Personas, func(p models.ScammerProfile) ([]string, int) { return []string{p.Type}, p.Conversations })
	topType := "N/A"
	if len(byType) > 0 {
		topType = byType[0].key
	}

	return fmt.Sprintf("**THREAT INTELLIGENCE REPORT**\n\n**Executive Summary:**\n"+
		"%d active scammer personas identified with risk scores ranging from %s-%s.\n\n"+
		"**High Priority Threats:**\n%s\n\n"+
		"**Trends:**\n- Total conversations tracked: %d\n- Average risk score: %s\n- Most active type: %s\n- Cross-platform coordination detected\n\n"+
		"**Recommendations:**\n1. Implement keyword filtering for identified phrases\n2. Monitor peak activity hours\n3. User education on common tactics\n4. Enhanced verification for financial requests",
		len(kb.Personas), risk(minRisk), risk(maxRisk), strings.Join(threats, "\n"),
		totalConversations(kb.Personas), avgRisk(kb.Personas), topType)
}

func scamTypeAnswer(q string, kb Knowledge) string {
	kind := scamTypeRef.FindString(q)
	if kind == "" {
		return scamTypeHelp
	}

	matching := filter(kb.Personas, func(p models.ScammerProfile) bool {
		return strings.Contains(strings.ToLower(p.Type), kind)
	})
	plural := "s"
	if len(matching) == 1 {
		plural = ""
	}
	average := "N/A"
	if len(matching) > 0 {
		average = avgRisk(matching)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s Scam:**\n\n**Description:**\n%s\n\n**In Our Database:**\n- **Count:** %d persona%s\n- **Total Conversations:** %d\n- **Average Risk Score:** %s",
		strings.ToUpper(kind[:1])+kind[1:], scamTypeDescriptions[kind], len(matching), plural, totalConversations(matching), average)
	if len(matching) > 0 {
		b.WriteString("\n\n**Examples:**\n")
		b.WriteString(personaLines(matching[:min(5, len(matching))]))
	}
	return b.String()
}

type tallyEntry struct {
	key   string
	count int
}

// tally sums weights per key and orders by count, descending, keeping
// first-seen order for ties.
func tally(personas []models.ScammerProfile, keys func(models.ScammerProfile) ([]string, int)) []tallyEntry {
	index := make(map[string]int)
	var out []tallyEntry
	for _, p := range personas {
		ks, weight := keys(p)
		for _, k := range ks {
			i, ok := index[k]
			if !ok {
				i = len(out)
				index[k] = i
				out = append(out, tallyEntry{key: k})
			}
			out[i].count += weight
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

func filter(personas []models.ScammerProfile, keep func(models.ScammerProfile) bool) []models.ScammerProfile {
	var out []models.ScammerProfile
	for _, p := range personas {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func findPersona(personas []models.ScammerProfile, id string) (models.ScammerProfile, bool) {
	if id == "" {
		return models.ScammerProfile{}, false
	}
	for _, p := range personas {
		if p.ID == id {
			return p, true
		}
	}
	return models.ScammerProfile{}, false
}

func personaLines(personas []models.ScammerProfile) string {
	lines := make([]string, len(personas))
	for i, p := range personas {
		lines[i] = fmt.Sprintf("- **%s** (%s): %d conversations, Risk %s", p.Name, p.ID, p.Conversations, risk(p.RiskScore))
	}
	return strings.Join(lines, "\n")
}

func seenSince(p models.ScammerProfile, since time.Time) bool {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, p.LastSeen); err == nil {
			return !t.Before(since)
		}
	}
	return false
}

func duration(start, end string) string {
	s, errStart := time.Parse(time.RFC3339, start)
	e, errEnd := time.Parse(time.RFC3339, end)
	if errStart != nil || errEnd != nil || !e.After(s) {
		return "Unknown"
	}
	return fmt.Sprintf("%d minutes", int(math.Round(e.Sub(s).Minutes())))
}

func mostActive(personas []models.ScammerProfile) string {
	best, name := -1, "N/A"
	for _, p := range personas {
		if p.Conversations > best {
			best, name = p.Conversations, p.Name
		}
	}
	return name
}

func totalConversations(personas []models.ScammerProfile) int {
	total := 0
	for _, p := range personas {
		total += p.Conversations
	}
	return total
}

func avgRisk(personas []models.ScammerProfile) string {
	if len(personas) == 0 {
		return "N/A"
	}
	return risk(dashboard.Compute(personas).AvgRiskScore)
}

func avgRiskOrZero(personas []models.ScammerProfile) string {
	if len(personas) == 0 {
		return "0"
	}
	return avgRisk(personas)
}

func risk(v float64) string {
	return fmt.Sprintf("%d", int(math.Round(v)))
}

func anyContains(values []string, sub string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), sub) {
			return true
		}
	}
	return false
}

func overlap(a, b []string) int {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[strings.ToLower(v)] = struct{}{}
	}
	n := 0
	for _, v := range a {
		if _, ok := set[strings.ToLower(v)]; ok {
			n++
		}
	}
	return n
}
