package services

import (
	"context"
	"fmt"
	"strings"

	"surcan_assistant_backend/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
)

// systemPrompt frames every completion. The business copy comes from the
// store's own material; keep edits in sync with them.
const systemPrompt = `Eres el asistente virtual de Surcan, una empresa familiar ubicada en el corazón de Apóstoles, ciudad de Misiones, con más de 40 años de experiencia en el rubro de la construcción. Sé amable y amistoso.
Trabajamos con múltiples marcas nacionales e internacionales en categorías como Ferretería, Pinturería, Sanitarios, Cocinas, Baños, Cerámicos y Guardas, Aberturas, Construcción en Seco y Siderúrgicos. Contamos con equipos capacitados para asesorar a nuestros clientes y elaborar presupuestos de materiales.
Horarios: lunes a viernes de 7:30 a 12:00 y de 15:00 a 19:00, sábados de 7:30 a 12:00, domingos cerrado. Contacto: 03758 42-2637, surcan.compras@gmail.com, surcan.ventas@gmail.com. Instagram: https://www.instagram.com/elijasurcan/
Envíos: solo a Misiones y Corrientes, por Correo Argentino, Vía Cargo o logística propia; el tiempo de entrega se informa en el checkout y corre desde la acreditación del pago.
Cambios y devoluciones: con documento de identidad, mismo método de pago, producto sin uso y con embalaje original completo; plazo máximo 15 días corridos (7 para productos con vencimiento); herramientas eléctricas con falla se cambian dentro de las 72 horas de entregadas, luego interviene el servicio técnico oficial.
Ante cualquier pregunta puntual sobre un producto (precios, características, variantes), pedile al usuario que escriba el nombre del producto o frases como "estoy buscando...", "quiero un...", "necesito...", y vos te encargás de encontrar las mejores opciones.`

// GenAssistant implements Assistant: product searches go to the storefront
// scraper, everything else to the model with the persisted history.
type GenAssistant struct {
	model    ChatModel
	history  HistoryStore
	searcher ProductSearcher
	maxTurns int
}

// NewAssistant creates a new GenAssistant. maxTurns caps how much history
// is replayed into the prompt.
func NewAssistant(model ChatModel, history HistoryStore, searcher ProductSearcher, maxTurns int) *GenAssistant {
	return &GenAssistant{
		model:    model,
		history:  history,
		searcher: searcher,
		maxTurns: maxTurns,
	}
}

func (a *GenAssistant) Reply(ctx context.Context, userID, message string) (Reply, error) {
	if IsProductSearch(message) {
		if name := ExtractProductName(message); name != "" {
			return a.replyWithProducts(ctx, name)
		}
	}
	return a.replyFromModel(ctx, userID, message)
}

func (a *GenAssistant) replyWithProducts(ctx context.Context, name string) (Reply, error) {
	products, err := a.searcher.Search(ctx, name)
	if err != nil {
		return Reply{}, fmt.Errorf("product search for %q: %w", name, err)
	}
	if len(products) == 0 {
		return Reply{Text: fmt.Sprintf("No encontré productos para \"%s\". ¿Querés que busque otra cosa?", name)}, nil
	}
	log.Info().Str("product", name).Int("results", len(products)).Msg("product search")
	return Reply{
		Text:     fmt.Sprintf("Esto es lo que encontré para \"%s\":", name),
		Products: products,
	}, nil
}

func (a *GenAssistant) replyFromModel(ctx context.Context, userID, message string) (Reply, error) {
	turns, err := a.history.Turns(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	if a.maxTurns > 0 && len(turns) > a.maxTurns {
		turns = turns[len(turns)-a.maxTurns:]
	}

	resp, err := a.model.GenerateContent(ctx, genai.Text(buildPrompt(turns, message)))
	if err != nil {
		return Reply{}, fmt.Errorf("chat completion: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return Reply{}, fmt.Errorf("empty completion for user %s", userID)
	}

	err = a.history.Append(ctx, userID,
		models.Turn{Role: "user", Content: message},
		models.Turn{Role: "model", Content: text},
	)
	if err != nil {
		return Reply{}, err
	}

	return Reply{Text: text}, nil
}

func buildPrompt(turns []models.Turn, message string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n--- Conversación ---\n")
	for _, turn := range turns {
		b.WriteString(turn.Role)
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	b.WriteString("user: ")
	b.WriteString(message)
	b.WriteString("\nmodel: ")
	return b.String()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}
