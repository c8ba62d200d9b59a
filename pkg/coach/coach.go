package coach

import (
	"context"
	"fmt"
	"strings"

	"kalorikollen/domain"
	"kalorikollen/pkg/gemini"

	"github.com/gofiber/fiber/v2/log"
)

// FallbackMessage is served whenever the model cannot be reached.
const FallbackMessage = "Fortsätt med ditt fantastiska arbete! Du är på rätt väg! 💪"

const emptyReplyMessage = "Fortsätt så här! Du gör det bra! 💪"

type Coach interface {
	Advise(ctx context.Context, in domain.CoachingInput) domain.CoachingResponse
}

type geminiCoach struct {
	client *gemini.Client
}

func NewCoach(client *gemini.Client) Coach {
	return &geminiCoach{client: client}
}

func (c *geminiCoach) Advise(ctx context.Context, in domain.CoachingInput) domain.CoachingResponse {
	if c.client == nil || c.client.APIKey == "" {
		return domain.CoachingResponse{Message: FallbackMessage}
	}

	reply, err := c.client.GenerateContent(ctx, nil, gemini.TextPart(Prompt(in)))
	if err != nil {
		log.Warnf("coaching request failed: %v", err)
		return domain.CoachingResponse{Message: FallbackMessage}
	}
	if reply = strings.TrimSpace(reply); reply == "" {
		reply = emptyReplyMessage
	}
	return domain.CoachingResponse{Message: reply}
}

func Prompt(in domain.CoachingInput) string {
	return fmt.Sprintf(`Du är en hälsocoach. Ge personligt råd på svenska baserat på:
- Dagens kalorier: %d av %s kcal (%d kvar)
- Protein: %.0fg av %sg
- Kolhydrater: %.0fg av %sg
- Fett: %.0fg av %sg

Ge ett kort, uppmuntrande råd (2-3 meningar) med konkreta förslag på vad personen kan äta härnäst. Var positiv och motiverande!`,
		in.Calories, in.CalorieGoal, in.Remaining,
		in.Macros.Protein, in.ProteinGoal,
		in.Macros.Carbs, in.CarbsGoal,
		in.Macros.Fat, in.FatGoal,
	)
}
