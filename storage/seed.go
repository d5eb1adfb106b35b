package storage

import (
	"context"
	"fmt"

	"aromasens/models"
)

// Catalog is the seed catalog, inserted in order so ids run 1..6
var Catalog = []models.Perfume{
	{
		Name:        "Jardin de Fleurs",
		Brand:       "Maison Elégance",
		Description: "Una fragancia sofisticada y femenina con notas de jazmín, rosa y vainilla. Refleja una personalidad elegante y romántica.",
		Gender:      models.GenderFeminine,
		ImageURL:    "https://images.unsplash.com/photo-1595457730125-2f194d8d1db1?auto=format&fit=crop&w=800&h=800",
		Notes:       []string{"Jazmín", "Rosa", "Vainilla", "Ámbar"},
		Occasions:   []string{"Eventos formales", "Citas románticas", "Reuniones sociales"},
		ProfileTags: []string{"Elegante", "Romántica", "Sofisticada", "Sensual"},
	},
	{
		Name:        "Velvet Dream",
		Brand:       "Lumine",
		Description: "Fragancia dulce con notas florales y toques de vainilla. Ideal para las mujeres que buscan un aroma sutil pero memorable.",
		Gender:      models.GenderFeminine,
		ImageURL:    "https://images.unsplash.com/photo-1592945403244-b3fbafd7f539?auto=format&fit=crop&w=800&h=800",
		Notes:       []string{"Vainilla", "Flores blancas", "Almizcle", "Sándalo"},
		Occasions:   []string{"Uso diario", "Trabajo", "Eventos casuales"},
		ProfileTags: []string{"Dulce", "Suave", "Alegre", "Moderna"},
	},
	{
		Name:        "Spring Bouquet",
		Brand:       "Floralie",
		Description: "Fragancia fresca con notas cítricas y florales ligeras. Perfecta para mujeres de espíritu libre y amantes de la naturaleza.",
		Gender:      models.GenderFeminine,
		ImageURL:    "https://images.unsplash.com/photo-1617897903246-719242758050?auto=format&fit=crop&w=600&h=400",
		Notes:       []string{"Bergamota", "Azahar", "Lirio", "Jazmín", "Almizcle blanco"},
		Occasions:   []string{"Uso diario", "Actividades al aire libre", "Primavera/Verano"},
		ProfileTags: []string{"Fresca", "Juvenil", "Natural", "Espontánea"},
	},
	{
		Name:        "Ébano Intenso",
		Brand:       "Noble Woods",
		Description: "Una fragancia masculina con carácter, notas de madera de cedro, cuero y ámbar. Proyecta confianza y distinción.",
		Gender:      models.GenderMasculine,
		ImageURL:    "https://images.unsplash.com/photo-1556228578-8c89e6adf883?auto=format&fit=crop&w=800&h=800",
		Notes:       []string{"Cedro", "Cuero", "Ámbar", "Pimienta negra"},
		Occasions:   []string{"Eventos formales", "Negocios", "Noches de gala"},
		ProfileTags: []string{"Elegante", "Confiado", "Sofisticado", "Poderoso"},
	},
	{
		Name:        "Midnight Essence",
		Brand:       "Noir Collection",
		Description: "Aroma intenso con notas amaderadas y especiadas. Para hombres de carácter fuerte y personalidad misteriosa.",
		Gender:      models.GenderMasculine,
		ImageURL:    "https://images.unsplash.com/photo-1588405748880-12d1d2a59f75?auto=format&fit=crop&w=600&h=400",
		Notes:       []string{"Cardamomo", "Pachulí", "Oud", "Sándalo", "Vainilla"},
		Occasions:   []string{"Ocasiones especiales", "Citas románticas", "Noches"},
		ProfileTags: []string{"Misterioso", "Intenso", "Cautivador", "Sensual"},
	},
	{
		Name:        "Aqua Vitae",
		Brand:       "Marine Elements",
		Description: "Fragancia fresca y vigorizante con notas marinas y cítricas. Para hombres dinámicos y aventureros.",
		Gender:      models.GenderMasculine,
		ImageURL:    "https://images.unsplash.com/photo-1594035910387-fea47794261f?auto=format&fit=crop&w=800&h=800",
		Notes:       []string{"Limón", "Sal marina", "Menta", "Almizcle", "Madera de teca"},
		Occasions:   []string{"Uso diario", "Deportes", "Actividades al aire libre"},
		ProfileTags: []string{"Activo", "Moderno", "Refrescante", "Dinámico"},
	},
}

// Seed inserts the catalog when the store holds no perfumes yet.
// It returns the number of perfumes inserted.
func Seed(ctx context.Context, store Store) (int, error) {
	n, err := store.CountPerfumes(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for i, p := range Catalog {
		if _, err := store.CreatePerfume(ctx, p); err != nil {
			return i, fmt.Errorf("failed to seed perfume %q: %w", p.Name, err)
		}
	}
	return len(Catalog), nil
}
