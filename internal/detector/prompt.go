package detector

import (
	"fmt"
	"strings"
)

const highRiskOriginNote = "  WARNING: this account originates from a high-risk data center"

func buildProfileSection(s Summary) string {
	var b strings.Builder
	b.WriteString("User profile:\n")
	fmt.Fprintf(&b, "- Days since joining: %d\n", s.DaysSinceJoin)
	fmt.Fprintf(&b, "- Messages sent: %d\n", s.SpeechCount)
	fmt.Fprintf(&b, "- Username: %s\n", orUnknown(s.Username))
	fmt.Fprintf(&b, "- Display name: %s", orUnknown(s.FirstName))

	if len(s.RiskFactors) > 0 {
		fmt.Fprintf(&b, "\n- Risk factors: %s", strings.Join(s.RiskFactors, ", "))
		for _, factor := range s.RiskFactors {
			if strings.Contains(factor, "DC4") || strings.Contains(factor, "DC5") {
				b.WriteString("\n" + highRiskOriginNote)
				break
			}
		}
	}

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// strategyNote tells the model to go easy on accounts too new to have any
// history and hard on established accounts posting templated ad copy.
func strategyNote(s Summary) string {
	if s.DaysSinceJoin < 3 || s.SpeechCount < 3 {
		return "Note: this is a new user. Be lenient with short messages to keep the false-positive rate down."
	}
	return "Note: this is an established user. If the message is short, templated, all-caps or emoji-heavy commercial text, treat it as advertising; a short message with no ad markers is NOT spam."
}

func buildTextPrompt(s Summary, messageText string) string {
	return fmt.Sprintf(`You are an anti-spam bot for Telegram groups. Analyze whether the following message is spam advertising.

%s

Message:
%s

%s

Spam advertising indicators include:
1. Fake payment processors or bank card offers
2. Links luring users into other groups
3. Illegal payments, gambling, sale of prohibited goods
4. Illegal services (premium account resale, click farms, betting desks, get-rich schemes)
5. Obfuscation via homophones, deliberate typos or special symbols
6. Regional scam service ads (bank accounts, ID numbers, eSIM, passports, bulk mail accounts, subscriptions)
7. All-caps text, heavy emoji use, "24/7 ACTIVE" and similar ad phrasing
8. Commercial content from high-risk accounts (no avatar, no bio, no username)

Return the result as JSON:
{
  "state": 1 or 0,
  "spam_score": 0-100,
  "spam_reason": "why",
  "spam_mock_text": "a sardonic one-liner if it is spam"
}`, buildProfileSection(s), messageText, strategyNote(s))
}

func buildPhotoPrompt(s Summary, caption string) string {
	if caption == "" {
		caption = "none"
	}
	return fmt.Sprintf(`You are an anti-spam bot for Telegram groups. Analyze whether this image contains spam advertising.

%s

Caption: %s

Check the image for spam indicators (payment details, gambling, illegal services and similar).

Return the result as JSON:
{
  "state": 1 or 0,
  "spam_score": 0-100,
  "spam_reason": "why",
  "spam_mock_text": "a sardonic one-liner"
}`, buildProfileSection(s), caption)
}
