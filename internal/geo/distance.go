// Package geo implementa o ranqueamento por proximidade: distância de
// grande círculo (lei esférica dos cossenos) e ordenação ascendente.
// Computação pura, sem I/O; os serviços passam a posição do usuário e os
// candidatos vindos do repositório.
package geo

import (
	"math"
	"sort"

	"quadrahub/internal/domain"
)

// EarthRadiusKM é o raio médio da Terra usado na fórmula de distância.
const EarthRadiusKM = 6371.0

// DefaultLimit é o corte padrão das listagens por proximidade.
const DefaultLimit = 20

// Located é qualquer entidade com posição geográfica (quadra, evento).
type Located interface {
	Coordinates() domain.Coordinates
}

// Ranked anota um candidato com a distância (km) até a referência.
type Ranked[T Located] struct {
	Item       T
	DistanceKM float64
}

// DistanceKM calcula a distância de grande círculo entre dois pontos pela
// lei esférica dos cossenos:
//
//	d = R * acos( cos(lat1)·cos(lat2)·cos(lon2−lon1) + sin(lat1)·sin(lat2) )
//
// Quando os pontos coincidem, o argumento do acos pode passar de 1.0 por erro
// de ponto flutuante e produzir NaN; o argumento é sempre limitado a [-1, 1].
func DistanceKM(a, b domain.Coordinates) float64 {
	lat1 := radians(a.Latitude)
	lon1 := radians(a.Longitude)
	lat2 := radians(b.Latitude)
	lon2 := radians(b.Longitude)

	arg := math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1) + math.Sin(lat1)*math.Sin(lat2)

	// Clamp obrigatório: sem ele, pontos idênticos podem virar NaN.
	if arg > 1 {
		arg = 1
	} else if arg < -1 {
		arg = -1
	}

	return EarthRadiusKM * math.Acos(arg)
}

// RankByProximity ordena os candidatos por distância ascendente até a
// referência e trunca em limit. Empates preservam a ordem de entrada
// (sort estável); não há chave secundária definida. limit <= 0 usa
// DefaultLimit; menos candidatos que o limite devolve todos.
func RankByProximity[T Located](reference domain.Coordinates, candidates []T, limit int) []Ranked[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ranked := make([]Ranked[T], 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, Ranked[T]{
			Item:       c,
			DistanceKM: DistanceKM(reference, c.Coordinates()),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKM < ranked[j].DistanceKM
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
