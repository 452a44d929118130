package knowledge

// Seed provides a small built-in knowledge base used when no content file is
// configured.
func Seed() []Entry {
	return []Entry{
		{
			ID:         "bloat",
			Title:      "Bloat (Ruminal Tympany)",
			Definition: "Bloat is an abnormal build-up of gas in the rumen of cattle, sheep and goats.",
			Symptoms: Lines{
				"Swelling of the left flank",
				"Difficulty breathing",
				"Restlessness and kicking at the belly",
				"Sudden collapse in severe cases",
			},
			Treatment: Lines{
				"Pass a stomach tube to release free gas",
				"Give an anti-foaming agent for frothy bloat",
				"Call a veterinarian immediately when the animal is down",
			},
			Ingredients: Lines{
				"Vegetable oil, 250 ml",
				"Turpentine oil, 30 ml",
				"Baking soda, 50 g in warm water",
			},
			Keywords: []string{"bloat", "tympany", "gas", "swollen stomach", "left flank"},
		},
		{
			ID:         "mastitis",
			Title:      "Mastitis",
			Definition: "Mastitis is inflammation of the udder, usually caused by bacterial infection.",
			Symptoms: Lines{
				"Swollen, hot or painful udder",
				"Clots or flakes in the milk",
				"Reduced milk yield",
				"Fever and loss of appetite",
			},
			Treatment: Lines{
				"Strip the affected quarter frequently",
				"Intramammary antibiotics as prescribed by a veterinarian",
				"Keep bedding clean and dry",
			},
			Ingredients: Lines{
				"Aloe vera, 250 g",
				"Turmeric powder, 50 g",
				"Lime, 15 g",
			},
			Keywords: []string{"mastitis", "udder", "milk clots", "teat"},
		},
		{
			ID:         "fmd",
			Title:      "Foot and Mouth Disease",
			Definition: "Foot and mouth disease is a highly contagious viral disease of cloven-hoofed animals.",
			Symptoms: Lines{
				"Blisters in the mouth and on the feet",
				"Excessive drooling",
				"Lameness",
				"High fever",
			},
			Treatment: Lines{
				"Isolate affected animals",
				"Wash lesions with a mild antiseptic",
				"Vaccinate the herd every six months",
			},
			Ingredients: Lines{
				"Coconut oil, 100 ml",
				"Turmeric powder, 20 g",
				"Neem leaves, one handful",
			},
			Keywords: []string{"foot and mouth", "fmd", "blisters", "drooling", "lameness"},
		},
		{
			ID:         "milk-fever",
			Title:      "Milk Fever (Hypocalcaemia)",
			Definition: "Milk fever is a drop in blood calcium around calving in dairy cows.",
			Symptoms: Lines{
				"Weakness and unsteady gait",
				"Cold ears and dry muzzle",
				"Cow lying down with head turned to the flank",
			},
			Treatment: Lines{
				"Slow intravenous calcium given by a veterinarian",
				"Oral calcium gel for mild cases",
			},
			Keywords: []string{"milk fever", "hypocalcaemia", "calcium", "calving", "downer cow"},
		},
		{
			ID:         "tick-fever",
			Title:      "Tick Fever (Babesiosis)",
			Definition: "Tick fever is a blood parasite infection spread by cattle ticks.",
			Symptoms: Lines{
				"High fever",
				"Red or coffee coloured urine",
				"Pale gums and weakness",
			},
			Treatment: Lines{
				"Antiprotozoal injection from a veterinarian",
				"Regular tick control on animals and in sheds",
			},
			Keywords: []string{"tick", "babesiosis", "red urine", "tick fever"},
		},
	}
}
