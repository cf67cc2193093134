package playergen

import "math/rand"

// namePool is the cached identity pool used when a descriptor leaves the
// player's identity unset. Weighted toward the domestic league's market.
type namePool struct {
	nationality string
	first       []string
	last        []string
}

var pools = []namePool{
	{
		nationality: "TR",
		first:       []string{"Emre", "Arda", "Burak", "Hakan", "Cenk", "Merih", "Ozan", "Kaan", "Yusuf", "Berat", "Kerem", "Baris"},
		last:        []string{"Yilmaz", "Demir", "Sahin", "Celik", "Kaya", "Aydin", "Ozturk", "Arslan", "Dogan", "Kilic", "Aslan", "Koc"},
	},
	{
		nationality: "BR",
		first:       []string{"Gabriel", "Lucas", "Matheus", "Pedro", "Rafael", "Thiago", "Vinicius", "Joao", "Bruno", "Felipe"},
		last:        []string{"Silva", "Santos", "Oliveira", "Souza", "Costa", "Pereira", "Almeida", "Ferreira", "Ribeiro", "Carvalho"},
	},
	{
		nationality: "DE",
		first:       []string{"Lukas", "Jonas", "Leon", "Finn", "Niklas", "Tim", "Max", "Felix", "Paul", "David"},
		last:        []string{"Mueller", "Schmidt", "Schneider", "Fischer", "Weber", "Wagner", "Becker", "Hoffmann", "Koch", "Richter"},
	},
	{
		nationality: "ES",
		first:       []string{"Alvaro", "Sergio", "Pablo", "Dani", "Iker", "Marcos", "Adrian", "Hugo", "Diego", "Mario"},
		last:        []string{"Garcia", "Martinez", "Lopez", "Sanchez", "Gonzalez", "Fernandez", "Torres", "Ramirez", "Navarro", "Moreno"},
	},
	{
		nationality: "FR",
		first:       []string{"Hugo", "Lucas", "Theo", "Antoine", "Kylian", "Ousmane", "Jules", "Leo", "Mathis", "Nathan"},
		last:        []string{"Martin", "Bernard", "Dubois", "Moreau", "Laurent", "Simon", "Michel", "Lefevre", "Roux", "Girard"},
	},
	{
		nationality: "NL",
		first:       []string{"Daan", "Sem", "Lars", "Thijs", "Bram", "Jesse", "Ruben", "Sven", "Niels", "Joris"},
		last:        []string{"DeJong", "VanDijk", "Bakker", "Visser", "Smit", "Meijer", "Mulder", "Bos", "Vos", "Peters"},
	},
}

// domesticWeight biases identity generation toward the first pool.
const domesticWeight = 50 // percent

// randomIdentity draws a (first, last, nationality) triple from the pools.
func randomIdentity(r *rand.Rand) (first, last, nationality string) {
	var pool namePool
	if r.Intn(100) < domesticWeight {
		pool = pools[0]
	} else {
		pool = pools[1+r.Intn(len(pools)-1)]
	}
	return pool.first[r.Intn(len(pool.first))], pool.last[r.Intn(len(pool.last))], pool.nationality
}
