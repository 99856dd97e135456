package engine

import "sort"

type scoredMove[M comparable] struct {
	move  M
	score uint8
}

/*
Root move ordering.
Captures first, everything else in the order the rules library produced.
Equal scores keep the earlier move, so the order also decides ties.
Below the root moves are searched as generated.
*/
const captureOffset uint8 = 1

func orderRootMoves[M comparable](pos Position[M], moves []M) []M {
	list := make([]scoredMove[M], len(moves))
	for i, m := range moves {
		list[i].move = m
		if pos.IsCapture(m) {
			list[i].score = captureOffset
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})

	ordered := make([]M, len(list))
	for i := range list {
		ordered[i] = list[i].move
	}
	return ordered
}
