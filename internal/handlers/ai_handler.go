// internal/handlers/ai_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
)

const (
	aiMaxRetries   = 3
	aiInitialDelay = 2 * time.Second
	aiTimeout      = 90 * time.Second
)

// withRetry executa a chamada à API generativa repetindo apenas em erros de
// cota (429 / RESOURCE_EXHAUSTED), com espera exponencial: 2s, 4s, 8s.
func withRetry(fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	delay := aiInitialDelay
	var lastErr error
	for attempt := 0; attempt <= aiMaxRetries; attempt++ {
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isQuotaError(err) {
			return nil, err
		}
		if attempt < aiMaxRetries {
			slog.Warn("Limite de cota da API generativa atingido, tentando novamente",
				"delay", delay.String(), "tentativas_restantes", aiMaxRetries-attempt)
			time.Sleep(delay)
			delay *= 2
		}
	}
	return nil, lastErr
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// extractJSON recorta a primeira estrutura JSON completa (objeto ou array)
// da resposta do modelo, descartando blocos markdown e texto solto.
func extractJSON(raw string) string {
	if jsonBlockStart := strings.Index(raw, "```json"); jsonBlockStart != -1 {
		raw = raw[jsonBlockStart+7:]
		if jsonBlockEnd := strings.Index(raw, "```"); jsonBlockEnd != -1 {
			raw = raw[:jsonBlockEnd]
		}
	} else if blockStart := strings.Index(raw, "```"); blockStart != -1 {
		raw = raw[blockStart+3:]
		if blockEnd := strings.Index(raw, "```"); blockEnd != -1 {
			raw = raw[:blockEnd]
		}
	}

	objStart := strings.Index(raw, "{")
	arrStart := strings.Index(raw, "[")

	start, closing := objStart, "}"
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start, closing = arrStart, "]"
	}
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(raw, closing)
	if end == -1 || end < start {
		return ""
	}

	potentialJSON := raw[start : end+1]
	if json.Valid([]byte(potentialJSON)) {
		return potentialJSON
	}

	slog.Warn("Resposta da IA continha JSON malformado ou incompleto.", "snippet", potentialJSON)
	return ""
}

// responseText concatena as partes de texto do primeiro candidato.
func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	return sb.String()
}

// readUploadedPart lê o arquivo enviado no formulário e o converte na parte
// binária da chamada multimodal.
func readUploadedPart(c *gin.Context) (genai.Part, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("arquivo de material não enviado: %w", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	return genai.Blob{MIMEType: mimeType, Data: data}, nil
}

// GeneratedPlan é a estrutura que o modelo deve devolver para um plano de aula.
type GeneratedPlan struct {
	Title      string   `json:"title"`
	Objectives []string `json:"objectives"`
	Content    string   `json:"content"`
	Activities []string `json:"activities"`
	Assessment string   `json:"assessment"`
}

// GenerateLessonPlanHandler cria um plano de aula a partir de um material
// enviado (PDF/imagem) via chamada multimodal ao Gemini.
func GenerateLessonPlanHandler(c *gin.Context) {
	if config.GeminiClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Serviço de IA indisponível"})
		return
	}

	subject := c.PostForm("subject")
	grade := c.PostForm("grade")
	topic := c.PostForm("topic")
	if subject == "" || grade == "" || topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Informe disciplina, série e tema"})
		return
	}

	contentPart, err := readUploadedPart(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt := fmt.Sprintf(`Com base no material fornecido, crie um plano de aula para %s sobre "%s" em %s.

	REGRA CRÍTICA PARA O CAMPO "content":
	Você deve extrair e transcrever o texto teórico do material RIGOROSAMENTE como ele aparece no original.
	Mantenha a divisão exata de parágrafos, a pontuação, a estrutura e a ordem das ideias.
	NÃO resuma, NÃO altere palavras. Transcreva o corpo de texto principal de forma literal.

	Responda EXCLUSIVAMENTE com um objeto JSON no formato:
	{"title": "...", "objectives": ["..."], "content": "...", "activities": ["..."], "assessment": "..."}`,
		grade, topic, subject)

	ctx, cancel := context.WithTimeout(context.Background(), aiTimeout)
	defer cancel()

	resp, err := withRetry(func() (*genai.GenerateContentResponse, error) {
		return config.GeminiClient.GenerateContent(ctx, contentPart, genai.Text(prompt))
	})
	if err != nil {
		slog.Error("Falha na geração do plano de aula", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Não foi possível gerar o plano de aula. Tente novamente."})
		return
	}

	cleanJSON := extractJSON(responseText(resp))
	if cleanJSON == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "A IA retornou dados inválidos. Tente novamente."})
		return
	}

	var plan GeneratedPlan
	if err := json.Unmarshal([]byte(cleanJSON), &plan); err != nil {
		slog.Error("Falha ao interpretar o JSON do plano de aula", "json", cleanJSON, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "A IA retornou dados inválidos. Tente novamente."})
		return
	}

	c.JSON(http.StatusOK, plan)
}

// GenerateQuestionsHandler gera exatamente 10 questões de múltipla escolha a
// partir do material enviado.
func GenerateQuestionsHandler(c *gin.Context) {
	if config.GeminiClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Serviço de IA indisponível"})
		return
	}

	contentPart, err := readUploadedPart(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt := `Gere exatamente 10 questões de múltipla escolha baseadas no texto fornecido.
	Cada questão deve ter 4 alternativas. Indique o índice da alternativa correta (0 a 3).
	Responda EXCLUSIVAMENTE com um array JSON no formato:
	[{"question": "...", "options": ["...", "...", "...", "..."], "correctAnswer": 0}]`

	questions, ok := generateQuestionList(c, prompt, contentPart)
	if !ok {
		return
	}
	if len(questions) != 10 {
		slog.Warn("A IA não devolveu as 10 questões esperadas", "count", len(questions))
	}
	c.JSON(http.StatusOK, questions)
}

// GenerateQuizInput parametriza a geração de quiz avulso.
type GenerateQuizInput struct {
	Subject string `json:"subject" binding:"required"`
	Grade   string `json:"grade" binding:"required"`
	Topic   string `json:"topic" binding:"required"`
	Count   int    `json:"count"`
}

// GenerateQuizHandler gera um quiz por disciplina/série/tema, sem material.
func GenerateQuizHandler(c *gin.Context) {
	if config.GeminiClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Serviço de IA indisponível"})
		return
	}

	var input GenerateQuizInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Count <= 0 {
		input.Count = 5
	}

	prompt := fmt.Sprintf(`Gere %d questões de múltipla escolha sobre "%s" para alunos de %s em %s.
	4 alternativas por questão. Responda EXCLUSIVAMENTE com um array JSON no formato:
	[{"question": "...", "options": ["...", "...", "...", "..."], "correctAnswer": 0}]`,
		input.Count, input.Topic, input.Grade, input.Subject)

	questions, ok := generateQuestionList(c, prompt)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, questions)
}

// generateQuestionList roda o prompt, extrai o array JSON e valida o formato
// das questões. Questões fora do padrão invalidam a resposta inteira.
func generateQuestionList(c *gin.Context, prompt string, extraParts ...genai.Part) ([]models.QuizQuestion, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), aiTimeout)
	defer cancel()

	parts := append(extraParts, genai.Text(prompt))
	resp, err := withRetry(func() (*genai.GenerateContentResponse, error) {
		return config.GeminiClient.GenerateContent(ctx, parts...)
	})
	if err != nil {
		slog.Error("Falha na geração de questões", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Não foi possível gerar as questões. Tente novamente."})
		return nil, false
	}

	cleanJSON := extractJSON(responseText(resp))
	if cleanJSON == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "A IA retornou dados inválidos. Tente novamente."})
		return nil, false
	}

	var questions []models.QuizQuestion
	if err := json.Unmarshal([]byte(cleanJSON), &questions); err != nil {
		slog.Error("Falha ao interpretar o JSON das questões", "json", cleanJSON, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "A IA retornou dados inválidos. Tente novamente."})
		return nil, false
	}
	if err := validateQuestions(questions); err != nil {
		slog.Warn("A IA gerou questões fora do formato", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "A IA gerou questões fora do formato esperado. Tente novamente."})
		return nil, false
	}
	return questions, true
}

// GenerateImageInput é o corpo da geração de ilustração pedagógica.
type GenerateImageInput struct {
	Prompt string `json:"prompt" binding:"required"`
}

// GenerateImageHandler pede uma ilustração ao modelo de imagem, grava o
// binário em static/uploads/visuals e devolve a URL.
func GenerateImageHandler(c *gin.Context) {
	if config.GeminiImageModel == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Serviço de IA indisponível"})
		return
	}

	var input GenerateImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), aiTimeout)
	defer cancel()

	prompt := fmt.Sprintf("Uma ilustração pedagógica: %s. Estilo educativo, limpo, alta qualidade.", input.Prompt)
	resp, err := withRetry(func() (*genai.GenerateContentResponse, error) {
		return config.GeminiImageModel.GenerateContent(ctx, genai.Text(prompt))
	})
	if err != nil {
		slog.Error("Falha na geração de imagem", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Não foi possível gerar a imagem. Tente novamente."})
		return
	}

	var blob *genai.Blob
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if b, ok := part.(genai.Blob); ok {
				blob = &b
				break
			}
		}
	}
	if blob == nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "A IA não retornou nenhuma imagem."})
		return
	}

	uploadDir := "./static/uploads/visuals"
	if _, err := os.Stat(uploadDir); os.IsNotExist(err) {
		if err := os.MkdirAll(uploadDir, os.ModePerm); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao preparar diretório de upload"})
			return
		}
	}

	ext := ".png"
	if strings.Contains(blob.MIMEType, "jpeg") {
		ext = ".jpg"
	}
	newFileName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	filePath := filepath.Join(uploadDir, newFileName)
	if err := os.WriteFile(filePath, blob.Data, 0o644); err != nil {
		slog.Error("Falha ao gravar imagem gerada", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao salvar a imagem gerada"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":    "/static/uploads/visuals/" + newFileName,
		"prompt": input.Prompt,
	})
}
