// internal/grading/grading.go

// Package grading corrige a submissão de um quiz. A validação acontece antes
// de qualquer persistência: uma submissão incompleta ou com alternativa fora
// da faixa é rejeitada sem efeito colateral.
package grading

import (
	"errors"
	"fmt"
	"math"

	"github.com/aboscolliaulas/Ensinoverso/models"
)

var (
	// ErrNoQuiz indica que a aula não possui questões para responder.
	ErrNoQuiz = errors.New("a aula não possui quiz")
	// ErrIncomplete indica que faltou resposta para uma ou mais questões.
	ErrIncomplete = errors.New("quiz incompleto: responda todas as questões")
)

// Result é o desfecho de uma correção.
type Result struct {
	Score      int `json:"score"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Grade compara as respostas com o gabarito e devolve o resultado.
// answers mapeia índice da questão -> índice da alternativa escolhida e
// precisa cobrir todas as questões da aula.
func Grade(questions []models.QuizQuestion, answers map[int]int) (Result, error) {
	if len(questions) == 0 {
		return Result{}, ErrNoQuiz
	}

	for i := range questions {
		opt, ok := answers[i]
		if !ok {
			return Result{}, ErrIncomplete
		}
		if opt < 0 || opt > 3 {
			return Result{}, fmt.Errorf("questão %d: alternativa %d fora da faixa válida", i, opt)
		}
	}

	score := 0
	for i, q := range questions {
		if answers[i] == q.CorrectAnswer {
			score++
		}
	}

	return Result{
		Score:      score,
		Total:      len(questions),
		Percentage: Percentage(score, len(questions)),
	}, nil
}

// Percentage converte acertos/total em percentual inteiro arredondado.
func Percentage(score, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}
